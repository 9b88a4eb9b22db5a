package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration, populated from the environment
// (a local .env file is loaded first when present).
type Config struct {
	HTTPPort string `envconfig:"PORT" default:"8080"`

	// DBDriver selects the store backend: memory, sqlite or postgres.
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	PostgresDSN string `envconfig:"DATABASE_URL" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/healthrecord.db"`

	JWTSecret string `envconfig:"JWT_SECRET" default:""`

	// RecentHistoryLimit caps the dashboard "recent history" count.
	RecentHistoryLimit int `envconfig:"RECENT_HISTORY_LIMIT" default:"3"`

	// Per-IP rate limit applied to the auth endpoints.
	AuthRateRPS   float64 `envconfig:"AUTH_RATE_RPS" default:"5"`
	AuthRateBurst int     `envconfig:"AUTH_RATE_BURST" default:"10"`
}

// Load reads the configuration and validates the parts that have no usable
// default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}

	switch cfg.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return &cfg, nil
}
