package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// SMTP holds the delivery transport settings. User and Pass stay empty on
// deployments that never send email; handlers check Configured before use.
type SMTP struct {
	Host   string `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
	Port   int    `env:"EMAIL_PORT" envDefault:"465"`
	User   string `env:"EMAIL_USER"`
	Pass   string `env:"EMAIL_PASS"`
	UseTLS bool   `env:"EMAIL_USE_TLS" envDefault:"true"`
}

// Configured reports whether credentials are present.
func (s SMTP) Configured() bool {
	return s.User != "" && s.Pass != ""
}

// Config is the process configuration, read once at startup and handed to
// the collaborators that need it.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8001"`
	FontsDir    string   `env:"FONTS_DIR" envDefault:"fonts"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	SMTP        SMTP
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
