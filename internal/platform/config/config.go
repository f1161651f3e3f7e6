package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the console configuration, read from MEMBERSHIP_* environment
// variables with an optional .env file underneath.
type Config struct {
	// APIBaseURL is the members API origin.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:3000"`
	// StorePath is the bolt database file backing the local fallback store.
	StorePath string `envconfig:"STORE_PATH" default:"membership.db"`
	// SessionPath is the persisted login session file.
	SessionPath string `envconfig:"SESSION_PATH" default:"session.json"`
	// HTTPTimeout bounds each API request; zero disables the client timeout.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	// StatsTTL is how long the overview aggregate is cached.
	StatsTTL time.Duration `envconfig:"STATS_TTL" default:"30s"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration. A named env file is required to exist; with
// envFile empty, a ./.env is loaded best-effort.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("MEMBERSHIP", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
