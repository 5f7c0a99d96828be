package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment once at startup and treated as
// immutable.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	CatalogBaseURL string  `env:"CATALOG_BASE_URL" envDefault:"https://api.escuelajs.co/api/v1"`
	CatalogRPS     float64 `env:"CATALOG_RPS" envDefault:"10"`
	CatalogBurst   int     `env:"CATALOG_BURST" envDefault:"5"`

	IdentityBaseURL string `env:"IDENTITY_BASE_URL,required,notEmpty"`
	IdentityAnonKey string `env:"IDENTITY_ANON_KEY,required,notEmpty"`

	// Optional: empty disables the catalog response cache.
	RedisAddr string `env:"REDIS_ADDR"`

	// Optional: empty disables order event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
