package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Storage  StorageConfig  `yaml:"storage"`
	Email    EmailConfig    `yaml:"email"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	PublicURL   string `yaml:"public_url"`
	CatalogPath string `yaml:"catalog_path"`
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	SwaggerDir          string `yaml:"swagger_dir"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	SecureCookies       bool   `yaml:"secure_cookies"`
	MaxUploadMB         int    `yaml:"max_upload_mb"`
}

func (h HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSeconds) * time.Second
}

func (h HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	SessionTTLMinutes     int `yaml:"session_ttl_minutes"`
	FleetCacheTTLSeconds  int `yaml:"fleet_cache_ttl_seconds"`
	RecentBookingsDefault int `yaml:"recent_bookings_default"`
}

func (b BookingConfig) SessionTTL() time.Duration {
	return time.Duration(b.SessionTTLMinutes) * time.Minute
}

func (b BookingConfig) FleetCacheTTL() time.Duration {
	return time.Duration(b.FleetCacheTTLSeconds) * time.Second
}

type StorageConfig struct {
	URL            string         `yaml:"url"`
	APIKey         string         `yaml:"api_key"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
	Buckets        StorageBuckets `yaml:"buckets"`
}

type StorageBuckets struct {
	VehicleImages string `yaml:"vehicle_images"`
	ReviewPhotos  string `yaml:"review_photos"`
	BlogImages    string `yaml:"blog_images"`
	PaymentProofs string `yaml:"payment_proofs"`
}

type EmailConfig struct {
	Provider       string `yaml:"provider"`
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AdminConfig struct {
	Email           string `yaml:"email"`
	PasswordHash    string `yaml:"password_hash"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

func (a AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

const (
	EmailProviderHosted   = "hosted"
	EmailProviderSendGrid = "sendgrid"
)

// LoadConfig reads the YAML file at path, then applies .env and process
// environment overrides for secrets.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML and fills defaults without touching the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ar-car-rentals"
	}
	if c.App.CatalogPath == "" {
		c.App.CatalogPath = "/api/fleet"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ReadTimeoutSeconds == 0 {
		c.HTTP.ReadTimeoutSeconds = 15
	}
	if c.HTTP.WriteTimeoutSeconds == 0 {
		c.HTTP.WriteTimeoutSeconds = 30
	}
	if c.HTTP.MaxUploadMB == 0 {
		c.HTTP.MaxUploadMB = 10
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.BookingTopic == "" {
		c.Kafka.BookingTopic = "bookings"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "email-worker"
	}
	if c.Booking.SessionTTLMinutes == 0 {
		c.Booking.SessionTTLMinutes = 120
	}
	if c.Booking.FleetCacheTTLSeconds == 0 {
		c.Booking.FleetCacheTTLSeconds = 60
	}
	if c.Booking.RecentBookingsDefault == 0 {
		c.Booking.RecentBookingsDefault = 5
	}
	if c.Storage.TimeoutSeconds == 0 {
		c.Storage.TimeoutSeconds = 30
	}
	if c.Storage.Buckets.VehicleImages == "" {
		c.Storage.Buckets.VehicleImages = "vehicle-images"
	}
	if c.Storage.Buckets.ReviewPhotos == "" {
		c.Storage.Buckets.ReviewPhotos = "review-photos"
	}
	if c.Storage.Buckets.BlogImages == "" {
		c.Storage.Buckets.BlogImages = "blog-images"
	}
	if c.Storage.Buckets.PaymentProofs == "" {
		c.Storage.Buckets.PaymentProofs = "payment-proofs"
	}
	if c.Email.Provider == "" {
		c.Email.Provider = EmailProviderHosted
	}
	if c.Email.TimeoutSeconds == 0 {
		c.Email.TimeoutSeconds = 15
	}
	if c.Admin.TokenTTLMinutes == 0 {
		c.Admin.TokenTTLMinutes = 8 * 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "arcarrentals"
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("DATABASE_PASSWORD", &c.Database.Password)
	set("REDIS_PASSWORD", &c.Redis.Password)
	set("ADMIN_EMAIL", &c.Admin.Email)
	set("ADMIN_PASSWORD_HASH", &c.Admin.PasswordHash)
	set("JWT_SECRET", &c.Admin.JWTSecret)
	set("EMAIL_API_KEY", &c.Email.APIKey)
	set("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	set("STORAGE_API_KEY", &c.Storage.APIKey)
	set("STORAGE_URL", &c.Storage.URL)
	set("PUBLIC_URL", &c.App.PublicURL)
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

// Validate checks settings the process cannot start without. Credentials for
// storage and email are checked lazily by their clients.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}
	if c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers is required")
	}
	if !strings.HasPrefix(c.App.CatalogPath, "/") {
		problems = append(problems, "app.catalog_path must be an absolute path")
	}
	switch c.Email.Provider {
	case EmailProviderHosted, EmailProviderSendGrid:
	default:
		problems = append(problems, fmt.Sprintf("email.provider %q is not supported", c.Email.Provider))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
