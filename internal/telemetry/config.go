package telemetry

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fyrsmithlabs/projectdeck/internal/config"
)

// Config describes where spans and metrics are exported. It is built from
// the telemetry section of the projectdeck config by FromSettings.
type Config struct {
	Enabled        bool           `koanf:"enabled"`
	Endpoint       string         `koanf:"endpoint"`
	Protocol       string         `koanf:"protocol"` // grpc or http/protobuf
	ServiceName    string         `koanf:"service_name"`
	ServiceVersion string         `koanf:"service_version"`
	Insecure       bool           `koanf:"insecure"`
	TLSSkipVerify  bool           `koanf:"tls_skip_verify"`
	Sampling       SamplingConfig `koanf:"sampling"`
	Metrics        MetricsConfig  `koanf:"metrics"`
	Shutdown       ShutdownConfig `koanf:"shutdown"`
}

type SamplingConfig struct {
	Rate float64 `koanf:"rate"` // fraction of root traces kept
}

type MetricsConfig struct {
	Enabled        bool            `koanf:"enabled"`
	ExportInterval config.Duration `koanf:"export_interval"`
}

type ShutdownConfig struct {
	Timeout config.Duration `koanf:"timeout"`
}

// NewDefaultConfig is off, pointing at a plaintext grpc collector on
// localhost.
func NewDefaultConfig() *Config {
	return &Config{
		Endpoint:       "localhost:4317",
		Protocol:       "grpc",
		ServiceName:    "projectdeck",
		ServiceVersion: "dev",
		Insecure:       true,
		Sampling:       SamplingConfig{Rate: 1},
		Metrics:        MetricsConfig{Enabled: true, ExportInterval: config.Duration(15 * time.Second)},
		Shutdown:       ShutdownConfig{Timeout: config.Duration(5 * time.Second)},
	}
}

// FromSettings maps the user-facing telemetry section onto Config.
func FromSettings(s config.TelemetryConfig, version string) *Config {
	cfg := NewDefaultConfig()
	cfg.Enabled = s.Enabled
	cfg.Insecure = s.Insecure
	if s.Endpoint != "" {
		cfg.Endpoint = s.Endpoint
	}
	if s.Protocol != "" {
		cfg.Protocol = s.Protocol
	}
	if s.ServiceName != "" {
		cfg.ServiceName = s.ServiceName
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	if s.SampleRate != 0 {
		cfg.Sampling.Rate = s.SampleRate
	}
	return cfg
}

// Validate checks an enabled config. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.Endpoint == "":
		return errors.New("endpoint is required when telemetry is enabled")
	case c.ServiceName == "":
		return errors.New("service_name is required when telemetry is enabled")
	case c.ServiceVersion == "":
		return errors.New("service_version is required when telemetry is enabled")
	case c.Protocol != "grpc" && c.Protocol != protocolHTTP:
		return fmt.Errorf("protocol must be grpc or %s, got %q", protocolHTTP, c.Protocol)
	case c.Insecure && !isLoopback(c.Endpoint):
		return fmt.Errorf("insecure export to %q is only allowed to a loopback collector; set insecure=false for TLS", c.Endpoint)
	case c.Sampling.Rate < 0 || c.Sampling.Rate > 1:
		return fmt.Errorf("sampling.rate must be between 0 and 1, got %g", c.Sampling.Rate)
	case c.Metrics.Enabled && c.Metrics.ExportInterval.Duration() <= 0:
		return errors.New("metrics.export_interval must be positive when metrics enabled")
	case c.Shutdown.Timeout.Duration() <= 0:
		return errors.New("shutdown.timeout must be positive")
	}
	return nil
}

// isLoopback reports whether endpoint names this machine.
func isLoopback(endpoint string) bool {
	host := stripScheme(endpoint)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
