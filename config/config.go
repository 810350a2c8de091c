// Package config has the application configuration structure
package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config is populated from the environment. The quote API key is
// required; startup fails fast without it.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"trader"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	QuoteAPIKey  string        `env:"ALPHA_VANTAGE_API_KEY,required"`
	QuoteTimeout time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
