package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Generation gateway
	GatewayURL     string        `env:"GATEWAY_URL" envDefault:"http://localhost:8000"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"0s"`

	// Session storage
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	StorePath   string `env:"STORE_PATH" envDefault:"sitewizard.db"`

	// Wizard behavior
	PurgeOnHome     bool   `env:"WIZARD_PURGE_ON_HOME" envDefault:"true"`
	DefaultLanguage string `env:"WIZARD_DEFAULT_LANGUAGE" envDefault:"fr"`
	DefaultTone     string `env:"WIZARD_TONE" envDefault:"standard"`
	ArticleLength   int    `env:"WIZARD_ARTICLE_LENGTH" envDefault:"1500"`
	DetailLevel     int    `env:"WIZARD_DETAIL_LEVEL" envDefault:"3"`
	Illustrate      bool   `env:"WIZARD_ILLUSTRATE_ARTICLES" envDefault:"false"`

	// Server
	Port     string `env:"PORT" envDefault:"8888"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DetailLevel < 1 || cfg.DetailLevel > 5 {
		return nil, fmt.Errorf("WIZARD_DETAIL_LEVEL must be between 1 and 5, got %d", cfg.DetailLevel)
	}
	if cfg.ArticleLength <= 0 {
		return nil, fmt.Errorf("WIZARD_ARTICLE_LENGTH must be positive, got %d", cfg.ArticleLength)
	}
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
