// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-level configuration. SMTP settings live with the
// mailer and are parsed there.
type Config struct {
	Port            int           `env:"PORT" envDefault:"4000"`
	MongoURI        string        `env:"MONGODB_URI"`
	MongoDatabase   string        `env:"MONGODB_DATABASE" envDefault:"appsalon"`
	FrontendURL     string        `env:"FRONTEND_URL"`
	ForbiddenWords  []string      `env:"COMMON_PASSWORD_PATTERNS" envSeparator:","`
	HIBPBaseURL     string        `env:"HIBP_BASE_URL"`
	HIBPTimeout     time.Duration `env:"HIBP_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses and validates the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGODB_URI environment variable")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("missing FRONTEND_URL environment variable")
	}
	return nil
}
