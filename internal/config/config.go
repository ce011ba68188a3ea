package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	MongoURI string `env:"MONGO_URI"`
	MongoDB  string `env:"MONGO_DB" envDefault:"shop"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"shop-website-api"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	// FrontendURL is the origin the verification links point at, e.g.
	// https://shop.example.com. Links are built as
	// <FrontendURL>/verify-email?token=... and /verify-newsletter?token=...
	FrontendURL string `env:"FRONTEND_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Glow Club"`
	ContactInbox string `env:"CONTACT_INBOX"`

	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET"`

	RedisURL            string `env:"REDIS_URL"`
	AuthRateLimitPerMin int    `env:"AUTH_RATE_LIMIT_PER_MIN" envDefault:"30"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.MongoURI == "" {
		errs = append(errs, "MONGO_URI is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTTTL <= 0 || c.JWTTTL > 30*24*time.Hour {
		errs = append(errs, "JWT_TTL must be between 1s and 30d")
	}
	if c.FrontendURL == "" {
		errs = append(errs, "FRONTEND_URL is required")
	}
	if len(c.UnsubscribeSecret) < 16 {
		errs = append(errs, "UNSUBSCRIBE_SECRET must be at least 16 chars")
	}
	if c.SMTPHost != "" {
		if c.SMTPUser == "" {
			errs = append(errs, "SMTP_USER is required when SMTP_HOST is set")
		}
		if c.SMTPPass == "" {
			errs = append(errs, "SMTP_PASS is required when SMTP_HOST is set")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			errs = append(errs, "SMTP_PORT must be a valid port")
		}
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// MailEnabled reports whether a real SMTP relay is configured. Without one the
// app falls back to logging outbound mail, which is only useful in development.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}
