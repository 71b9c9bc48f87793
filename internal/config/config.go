package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	HTTPAddr      string        `env:"GACHA_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"GACHA_GRPC_ADDR" envDefault:":9090"`
	ProfileDir    string        `env:"GACHA_PROFILE_DIR" envDefault:"configs"`
	WatchInterval time.Duration `env:"GACHA_WATCH_INTERVAL" envDefault:"5s"`

	LogLevel  string `env:"GACHA_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"GACHA_LOG_FORMAT" envDefault:"text"`

	CacheSize int           `env:"GACHA_CACHE_SIZE" envDefault:"1024"`
	CacheTTL  time.Duration `env:"GACHA_CACHE_TTL" envDefault:"10m"`

	// Caps on caller-chosen work per request.
	MaxDraws  int `env:"GACHA_MAX_DRAWS" envDefault:"2000"`
	MaxTrials int `env:"GACHA_MAX_TRIALS" envDefault:"100000"`
}

// Load reads an optional .env file and then the environment.
func Load(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.CacheSize <= 0:
		return fmt.Errorf("GACHA_CACHE_SIZE must be > 0, got %d", c.CacheSize)
	case c.MaxDraws <= 0:
		return fmt.Errorf("GACHA_MAX_DRAWS must be > 0, got %d", c.MaxDraws)
	case c.MaxTrials <= 0:
		return fmt.Errorf("GACHA_MAX_TRIALS must be > 0, got %d", c.MaxTrials)
	case c.WatchInterval < 0:
		return fmt.Errorf("GACHA_WATCH_INTERVAL must be >= 0, got %s", c.WatchInterval)
	}
	return nil
}
