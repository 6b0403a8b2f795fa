package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Auth     AuthConfig     `yaml:"auth"`
	Stripe   StripeConfig   `yaml:"stripe"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address             string   `yaml:"address"`
	SwaggerEnabled      bool     `yaml:"swagger_enabled"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	CORSOrigins         []string `yaml:"cors_origins"`
	RateLimitRPS        float64  `yaml:"rate_limit_rps"`
	RateLimitBurst      int      `yaml:"rate_limit_burst"`
	// ExposeResetTokens returns password reset tokens in the API response.
	// Development only.
	ExposeResetTokens bool `yaml:"expose_reset_tokens"`
}

type StorageConfig struct {
	// Driver is "memory" or "postgres".
	Driver string `yaml:"driver"`
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
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	ReferencePrefix     string `yaml:"reference_prefix"`
	StrictTransitions   *bool  `yaml:"strict_transitions"`
	CatalogCacheTTL     int    `yaml:"catalog_cache_ttl_seconds"`
	CheckoutLockSeconds int    `yaml:"checkout_lock_seconds"`
	SeedCatalog         bool   `yaml:"seed_catalog"`
}

// Strict reports whether the transition tables are enforced. Defaults to true.
func (b BookingConfig) Strict() bool {
	return b.StrictTransitions == nil || *b.StrictTransitions
}

type AuthConfig struct {
	JWTSecret            string `yaml:"jwt_secret"`
	TokenTTLMinutes      int    `yaml:"token_ttl_minutes"`
	ResetTokenTTLMinutes int    `yaml:"reset_token_ttl_minutes"`
	BcryptCost           int    `yaml:"bcrypt_cost"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// SMTPConfig configures outgoing mail. An empty Host logs messages instead of
// sending them.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type WorkerConfig struct {
	NotificationRetries int `yaml:"notification_retries"`
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ReadTimeoutSeconds == 0 {
		c.HTTP.ReadTimeoutSeconds = 15
	}
	if c.HTTP.WriteTimeoutSeconds == 0 {
		c.HTTP.WriteTimeoutSeconds = 30
	}
	if c.HTTP.RateLimitRPS == 0 {
		c.HTTP.RateLimitRPS = 20
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = 40
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Booking.ReferencePrefix == "" {
		c.Booking.ReferencePrefix = "BK"
	}
	if c.Booking.CatalogCacheTTL == 0 {
		c.Booking.CatalogCacheTTL = 300
	}
	if c.Booking.CheckoutLockSeconds == 0 {
		c.Booking.CheckoutLockSeconds = 30
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 24 * 60
	}
	if c.Auth.ResetTokenTTLMinutes == 0 {
		c.Auth.ResetTokenTTLMinutes = 120
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "oceanview-worker"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Worker.NotificationRetries == 0 {
		c.Worker.NotificationRetries = 3
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.From == "" {
		c.SMTP.From = "no-reply@oceanview.example"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.Booking.CatalogCacheTTL) * time.Second
}

func (c *Config) CheckoutLockTTL() time.Duration {
	return time.Duration(c.Booking.CheckoutLockSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.Auth.ResetTokenTTLMinutes) * time.Minute
}

// LoadConfig reads the YAML file at path. A .env file next to the process is
// loaded first when present, and ${VAR} references in the YAML are expanded.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
