package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	App         AppConfig
	Log         LogConfig
	Rewards     RewardsConfig
	Ledger      LedgerConfig
	Store       StoreConfig
	Maintenance MaintenanceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	APIKeys         []string      `envconfig:"API_KEYS"`
	RateLimit       int           `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateBurst       int           `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"guild-economy"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"` // text or json
}

// RewardsConfig holds the amounts granted by timed rewards.
// Work is either a single amount or a min,max range.
type RewardsConfig struct {
	Daily  int64   `envconfig:"REWARD_DAILY" required:"true"`
	Weekly int64   `envconfig:"REWARD_WEEKLY" required:"true"`
	Work   []int64 `envconfig:"REWARD_WORK" required:"true"`
}

// LedgerConfig holds balance policy settings.
type LedgerConfig struct {
	// AllowNegative lets subtract drive a balance below zero instead of
	// rejecting with INSUFFICIENT_FUNDS.
	AllowNegative bool `envconfig:"LEDGER_ALLOW_NEGATIVE" default:"false"`
}

// StoreConfig holds guild storage settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres, mysql, redis or memory
	Name string `envconfig:"STORE_NAME" default:"economy"`
	Path string `envconfig:"STORE_PATH" default:"./data/economy.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"STORE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_DB_PORT" default:"0"`
	Database string `envconfig:"STORE_DB_NAME" default:"economy"`
	User     string `envconfig:"STORE_DB_USER" default:""`
	Password string `envconfig:"STORE_DB_PASS" default:""`
	SSLMode  string `envconfig:"STORE_DB_SSLMODE" default:"disable"`
	// Redis settings
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// MaintenanceConfig holds the normalization job schedule.
type MaintenanceConfig struct {
	Enabled  bool   `envconfig:"MAINTENANCE_ENABLED" default:"true"`
	Schedule string `envconfig:"MAINTENANCE_SCHEDULE" default:"@every 6h"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, port, s.Database, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.User, s.Password, s.Host, port, s.Database)
}

// RedisAddress returns the Redis address in host:port format.
func (s *StoreConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// WorkRange returns the work reward bounds. A single amount yields min == max.
func (r *RewardsConfig) WorkRange() (min, max int64) {
	switch len(r.Work) {
	case 0:
		return 0, 0
	case 1:
		return r.Work[0], r.Work[0]
	default:
		return r.Work[0], r.Work[1]
	}
}

// Validate checks the reward and store settings.
func (c *Config) Validate() error {
	if c.Rewards.Daily < 0 {
		return fmt.Errorf("REWARD_DAILY must not be negative")
	}
	if c.Rewards.Weekly < 0 {
		return fmt.Errorf("REWARD_WEEKLY must not be negative")
	}
	if n := len(c.Rewards.Work); n == 0 || n > 2 {
		return fmt.Errorf("REWARD_WORK must be an amount or a min,max pair")
	}
	min, max := c.Rewards.WorkRange()
	if min < 0 || max < 0 {
		return fmt.Errorf("REWARD_WORK must not be negative")
	}
	if min > max {
		return fmt.Errorf("REWARD_WORK min %d is greater than max %d", min, max)
	}
	if max-min == math.MaxInt64 {
		return fmt.Errorf("REWARD_WORK range %d,%d is too wide", min, max)
	}

	switch strings.ToLower(c.Store.Type) {
	case "sqlite", "postgres", "postgresql", "mysql", "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q", c.Store.Type)
	}
	if strings.TrimSpace(c.Store.Name) == "" {
		return fmt.Errorf("STORE_NAME is required")
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
