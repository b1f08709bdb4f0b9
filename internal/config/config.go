// Package config provides configuration loading for projectdeck.
//
// Configuration comes from defaults, an optional YAML file and
// PROJECTDECK_* environment variables, in increasing precedence.
// See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/text/language"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

// Config holds the complete projectdeck configuration.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	View      ViewConfig      `koanf:"view"`
	Session   project.User    `koanf:"session"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// CatalogConfig holds settings for the catalog API client.
type CatalogConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	Token   Secret        `koanf:"token"`
}

// ViewConfig holds discovery view settings.
type ViewConfig struct {
	// Sort is the initial sort key. Unknown keys fall back to "recent".
	Sort string `koanf:"sort"`
	// Locale is the BCP 47 tag used to collate project names.
	Locale string `koanf:"locale"`
	// WebURL is the web frontend that project routes resolve against.
	WebURL string `koanf:"web_url"`
}

// ServerConfig holds catalog server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CatalogFile     string        `koanf:"catalog_file"`
	Watch           bool          `koanf:"watch"`
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
}

// LoggingConfig holds the user-facing logging knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File receives logs while the terminal UI owns stdout.
	File string `koanf:"file"`
}

// TelemetryConfig holds OpenTelemetry configuration.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"`
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - catalog.base_url or view.web_url is not an absolute http(s) URL
//   - catalog.timeout or server.shutdown_timeout is not positive
//   - server.http_port is not between 1 and 65535
//   - view.locale is not a valid BCP 47 tag
//   - server.rate_limit is negative
func (c *Config) Validate() error {
	if err := validateHTTPURL("catalog.base_url", c.Catalog.BaseURL); err != nil {
		return err
	}
	if c.Catalog.Timeout <= 0 {
		return errors.New("catalog.timeout must be positive")
	}

	if err := validateHTTPURL("view.web_url", c.View.WebURL); err != nil {
		return err
	}
	if _, err := language.Parse(c.View.Locale); err != nil {
		return fmt.Errorf("invalid view.locale %q: %w", c.View.Locale, err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit cannot be negative: %v", c.Server.RateLimit)
	}

	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// Locale returns the parsed view locale, falling back to English.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.View.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", field, raw)
	}
	return nil
}
