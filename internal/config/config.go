package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr        string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath          string     `env:"DB_PATH" envDefault:"data/eventmap.db"`
	LogLevel        slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile         string     `env:"LOG_FILE"`
	SPADir          string     `env:"SPA_DIR" envDefault:"../web/dist"`
	AdminSecretHash string     `env:"ADMIN_SECRET_HASH"`
	CORSOrigins     []string   `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RateLimit       int        `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	QuizLimit       int        `env:"QUIZ_DEFAULT_LIMIT" envDefault:"5"`
	SeedDemo        bool       `env:"SEED_DEMO" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", cfg.RateLimit)
	}
	if cfg.QuizLimit <= 0 {
		return nil, fmt.Errorf("QUIZ_DEFAULT_LIMIT must be positive, got %d", cfg.QuizLimit)
	}
	return &cfg, nil
}
