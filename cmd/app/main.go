package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/api"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/config"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/auth"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/bootstrap"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/cache"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/funnel"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/kafka"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/metrics"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/blog"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/booking"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/fleet"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/reviews"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/migrations"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Service:   cfg.App.Name,
	})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			log.Fatal("apply migrations", "error", err)
		}
		log.Info("migrations applied")
	}

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log.With("component", "kafka"))
	defer producer.Close()
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.Warn("kafka is not reachable, booking events will be dropped until it is", "error", err)
	}
	cancel()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	var uploader storage.Uploader = storage.NewClient(cfg.Storage.URL, cfg.Storage.APIKey, time.Duration(cfg.Storage.TimeoutSeconds)*time.Second)
	if m != nil {
		uploader = m.InstrumentUploader(uploader)
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewCustomerRepository(pool),
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPublicURL(cfg.App.PublicURL),
		booking.WithRecentDefault(cfg.Booking.RecentBookingsDefault),
		booking.WithLogger(log.With("component", "booking")),
	)
	fleetService := fleet.NewFleetService(
		repository.NewVehicleRepository(pool),
		cache.NewRedisCache(redisClient, cfg.Booking.FleetCacheTTL()),
		uploader,
		cfg.Storage.Buckets.VehicleImages,
		log.With("component", "fleet"),
	)
	reviewService := reviews.NewReviewService(
		repository.NewReviewRepository(pool),
		uploader,
		cfg.Storage.Buckets.ReviewPhotos,
		log.With("component", "reviews"),
	)
	blogService := blog.NewBlogService(
		repository.NewBlogRepository(pool),
		uploader,
		cfg.Storage.Buckets.BlogImages,
		blog.WithLogger(log.With("component", "blog")),
	)
	authenticator := auth.NewService(cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL())

	guardOpts := []funnel.GuardOption{
		funnel.WithSecureCookie(cfg.HTTP.SecureCookies),
		funnel.WithLogger(log.With("component", "funnel")),
	}
	funnelOpts := []api.FunnelOption{api.WithFunnelLogger(log.With("component", "funnel"))}
	if m != nil {
		guardOpts = append(guardOpts, funnel.WithRedirectHook(func(r funnel.Requirement) { m.GuardRedirect(r.String()) }))
		funnelOpts = append(funnelOpts, api.WithBookedHook(func(*domain.Booking) { m.BookingCreated() }))
	}
	guard := funnel.NewGuard(cache.NewSessionStore(redisClient, cfg.Booking.SessionTTL()), cfg.App.CatalogPath, guardOpts...)

	handlers := bootstrap.Handlers{
		Fleet:         api.NewFleetHandler(fleetService),
		Funnel:        api.NewFunnelHandler(guard, fleetService, bookingService, uploader, cfg.Storage.Buckets.PaymentProofs, funnelOpts...),
		Reviews:       api.NewReviewHandler(reviewService),
		Blogs:         api.NewBlogHandler(blogService),
		Bookings:      api.NewBookingHandler(bookingService),
		Vehicles:      api.NewVehicleAdminHandler(fleetService),
		Auth:          api.NewAuthHandler(authenticator),
		Authenticator: authenticator,
	}
	checks := map[string]bootstrap.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	router := bootstrap.NewRouter(cfg, handlers, log.With("component", "http"), m, checks)

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Fatal("server error", "error", err)
	}
}
