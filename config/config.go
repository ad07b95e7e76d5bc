package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config is parsed from environment variables prefixed with WARDROBE_.
// Example: WARDROBE_HTTP_PORT, WARDROBE_QWEATHER_API_KEY
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	HTTPPort    int         `envconfig:"HTTP_PORT" default:"8083"`

	// Main embedded database
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH" default:"data/wardrobe.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Key-value cache store, kept apart from the main database
	KVBackend  string `envconfig:"KV_BACKEND" default:"sqlite"`
	KVPath     string `envconfig:"KV_PATH" default:"data/cache.db"`
	KVMaxBytes int64  `envconfig:"KV_MAX_BYTES" default:"5242880"`
	RedisAddr  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// AI relay
	AIBackend     string        `envconfig:"AI_BACKEND" default:"relay"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL" default:""`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	TryOnModel    string        `envconfig:"TRYON_MODEL" default:"gpt-4o-image"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	// Weather
	QWeatherAPIKey  string        `envconfig:"QWEATHER_API_KEY" default:""`
	QWeatherBaseURL string        `envconfig:"QWEATHER_BASE_URL" default:"https://devapi.qweather.com"`
	WeatherTimeout  time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`

	// Location fallback when the caller does not send coordinates
	DefaultLat      *float64      `envconfig:"DEFAULT_LAT"`
	DefaultLon      *float64      `envconfig:"DEFAULT_LON"`
	LocationTimeout time.Duration `envconfig:"LOCATION_TIMEOUT" default:"10s"`

	// Calendar zone used for day-boundary cache expiry, e.g. Asia/Shanghai
	Timezone string `envconfig:"TIMEZONE" default:""`

	// Backup archive (R2 / S3)
	BackupBucket      string `envconfig:"BACKUP_BUCKET" default:""`
	R2AccountID       string `envconfig:"R2_ACCOUNT_ID" default:""`
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID" default:""`
	R2AccessKeySecret string `envconfig:"R2_ACCESS_KEY_SECRET" default:""`

	SentryDSN string `envconfig:"SENTRY_DSN" default:""`
}

// Validate checks driver selections and derived values.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	switch c.KVBackend {
	case "sqlite", "memory", "redis":
	default:
		return fmt.Errorf("unsupported KV_BACKEND: %s", c.KVBackend)
	}
	switch c.AIBackend {
	case "relay", "genai":
	default:
		return fmt.Errorf("unsupported AI_BACKEND: %s", c.AIBackend)
	}
	if (c.DefaultLat == nil) != (c.DefaultLon == nil) {
		return errors.New("DEFAULT_LAT and DEFAULT_LON must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the calendar zone for "today". Empty means process local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// New loads .env when present and parses the WARDROBE_ environment.
func New() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg(".env present but could not be loaded")
		}
	}

	var cfg Config
	if err := envconfig.Process("WARDROBE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("kv_backend", cfg.KVBackend).
		Str("ai_backend", cfg.AIBackend).
		Bool("ai_configured", cfg.GeminiBaseURL != "" && cfg.GeminiAPIKey != "").
		Bool("weather_configured", cfg.QWeatherAPIKey != "").
		Bool("backup_archive", cfg.BackupBucket != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting returns an in-memory friendly configuration.
func NewForTesting() *Config {
	return &Config{
		Environment:     EnvTesting,
		HTTPPort:        8083,
		DBDriver:        "sqlite",
		DBPath:          ":memory:",
		KVBackend:       "memory",
		KVMaxBytes:      5 << 20,
		AIBackend:       "relay",
		GeminiModel:     "gemini-2.0-flash",
		TryOnModel:      "gpt-4o-image",
		AITimeout:       5 * time.Second,
		QWeatherBaseURL: "http://localhost",
		WeatherTimeout:  5 * time.Second,
		LocationTimeout: 10 * time.Second,
	}
}
