// Package config loads the site configuration from the environment.
package config

import (
	"fmt"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Mail providers.
const (
	ProviderSendGrid = "sendgrid"
	ProviderSMTP     = "smtp"
)

// Config is the whole site configuration. Keys are the lower-cased
// environment variable names.
type Config struct {
	Port         string `koanf:"port"`
	GinMode      string `koanf:"gin_mode"`
	DatabasePath string `koanf:"database_path"`

	MailProvider     string `koanf:"mail_provider"`
	SendGridAPIKey   string `koanf:"sendgrid_api_key"`
	SendGridHost     string `koanf:"sendgrid_host"`
	ContactToEmail   string `koanf:"contact_to_email"`
	ContactFromEmail string `koanf:"contact_from_email"`

	SMTPHost string `koanf:"smtp_host"`
	SMTPPort string `koanf:"smtp_port"`
	SMTPUser string `koanf:"smtp_user"`
	SMTPPass string `koanf:"smtp_pass"`

	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	TrackVisitors  bool `koanf:"track_visitors"`
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Port:             "8080",
		GinMode:          "debug",
		DatabasePath:     "portfolio.db",
		MailProvider:     ProviderSendGrid,
		SendGridHost:     "https://api.sendgrid.com",
		ContactToEmail:   "your-email@example.com",
		ContactFromEmail: "your-verified-sender@example.com",
		SMTPHost:         "smtp.gmail.com",
		SMTPPort:         "587",
		TrackVisitors:    true,
		MetricsEnabled:   true,
	}
}

// Load overlays the process environment (and a .env file, if present) on top
// of the defaults. Empty variables are ignored.
func Load() (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	switch c.MailProvider {
	case ProviderSendGrid, ProviderSMTP:
	default:
		return fmt.Errorf("invalid mail_provider %q: must be sendgrid or smtp", c.MailProvider)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.ContactToEmail == "" || c.ContactFromEmail == "" {
		return fmt.Errorf("contact_to_email and contact_from_email are required")
	}
	return nil
}
