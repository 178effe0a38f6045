package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/api"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/config"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/auth"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/metrics"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 5 * time.Second

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Fleet         *api.FleetHandler
	Funnel        *api.FunnelHandler
	Reviews       *api.ReviewHandler
	Blogs         *api.BlogHandler
	Bookings      *api.BookingHandler
	Vehicles      *api.VehicleAdminHandler
	Auth          *api.AuthHandler
	Authenticator auth.Authenticator
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter builds the route table. Metrics and health checks are optional.
func NewRouter(cfg *config.Config, h Handlers, log *logger.Logger, m *metrics.Metrics, checks map[string]HealthCheck) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.HTTP.MaxUploadMB) << 20
	r.Use(api.RequestID(), api.RequestLogger(log), api.Recovery(log))
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	if cfg.HTTP.SwaggerDir != "" {
		r.StaticFile("/docs/openapi.json", filepath.Join(cfg.HTTP.SwaggerDir, "openapi.json"))
		r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))
	}

	root := r.Group("/api")
	root.GET("/health", health(checks))

	h.Fleet.Register(root.Group("/fleet"))
	h.Funnel.Register(root)
	h.Reviews.Register(root.Group("/reviews"))
	h.Blogs.Register(root.Group("/blogs"))

	admin := root.Group("/admin")
	h.Auth.Register(admin)
	protected := admin.Group("", api.RequireAdmin(h.Authenticator))
	h.Bookings.Register(protected.Group("/bookings"))
	h.Vehicles.Register(protected.Group("/vehicles"))
	h.Blogs.RegisterAdmin(protected.Group("/blogs"))

	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		if status != http.StatusOK {
			msg := "service unavailable"
			c.JSON(status, gin.H{"data": report, "error": msg})
			return
		}
		c.JSON(status, gin.H{"data": report, "error": nil})
	}
}

// Run serves handler until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout(),
		WriteTimeout: cfg.HTTP.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", cfg.HTTP.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("http server stopped")
		return nil
	}
}
