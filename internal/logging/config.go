package logging

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/projectdeck/internal/config"
)

// Config holds logging configuration.
type Config struct {
	Level      zapcore.Level     `koanf:"level"`
	Format     string            `koanf:"format"`
	Output     OutputConfig      `koanf:"output"`
	Sampling   SamplingConfig    `koanf:"sampling"`
	Caller     CallerConfig      `koanf:"caller"`
	Stacktrace StacktraceConfig  `koanf:"stacktrace"`
	Fields     map[string]string `koanf:"fields"`
	Redaction  RedactionConfig   `koanf:"redaction"`
}

// OutputConfig selects log sinks. The browser owns the terminal, so it
// logs to File; list, create and serve log to Stderr.
type OutputConfig struct {
	Stdout bool   `koanf:"stdout"`
	Stderr bool   `koanf:"stderr"`
	File   string `koanf:"file"`
	OTEL   bool   `koanf:"otel"`
}

// SamplingConfig caps entries per Tick for each level in Levels. Levels
// without an entry, and everything from Error up, are never sampled.
type SamplingConfig struct {
	Enabled bool                                  `koanf:"enabled"`
	Tick    config.Duration                       `koanf:"tick"`
	Levels  map[zapcore.Level]LevelSamplingConfig `koanf:"levels"`
}

// LevelSamplingConfig keeps the first Initial entries per tick, then every
// Thereafter-th. Thereafter 0 drops the rest.
type LevelSamplingConfig struct {
	Initial    int `koanf:"initial"`
	Thereafter int `koanf:"thereafter"`
}

type CallerConfig struct {
	Enabled bool `koanf:"enabled"`
	Skip    int  `koanf:"skip"`
}

type StacktraceConfig struct {
	Level zapcore.Level `koanf:"level"`
}

// RedactionConfig lists field keys (case-insensitive) and value patterns
// to mask.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`
}

// Keys and patterns for credentials projectdeck handles: the catalog API
// token and bearer headers.
var (
	defaultRedactFields = []string{
		"token", "api_token", "authorization", "bearer",
		"password", "secret", "credential", "private_key",
	}
	defaultRedactPatterns = []string{
		`(?i)bearer\s+\S+`,
		`(?i)api[_-]?key[=:]\s*\S+`,
	}
)

// NewDefaultConfig logs JSON at info to stderr with sampling and
// redaction on.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Output: OutputConfig{Stderr: true},
		Sampling: SamplingConfig{
			Enabled: true,
			Tick:    config.Duration(time.Second),
			Levels:  DefaultLevelSamplingConfig(),
		},
		Caller:     CallerConfig{Enabled: true, Skip: 1},
		Stacktrace: StacktraceConfig{Level: zapcore.ErrorLevel},
		Fields:     map[string]string{"service": "projectdeck"},
		Redaction: RedactionConfig{
			Enabled:  true,
			Fields:   append([]string(nil), defaultRedactFields...),
			Patterns: append([]string(nil), defaultRedactPatterns...),
		},
	}
}

// DefaultLevelSamplingConfig returns per-level budgets for one tick.
func DefaultLevelSamplingConfig() map[zapcore.Level]LevelSamplingConfig {
	return map[zapcore.Level]LevelSamplingConfig{
		TraceLevel:         {Initial: 1},
		zapcore.DebugLevel: {Initial: 10},
		zapcore.InfoLevel:  {Initial: 100, Thereafter: 10},
		zapcore.WarnLevel:  {Initial: 100, Thereafter: 100},
	}
}

// FromSettings maps the user-facing logging section onto the defaults.
// A file, when set, replaces stderr.
func FromSettings(s config.LoggingConfig) (*Config, error) {
	cfg := NewDefaultConfig()
	if s.Level != "" {
		lvl, err := LevelFromString(s.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", s.Level, err)
		}
		cfg.Level = lvl
	}
	if s.Format != "" {
		cfg.Format = s.Format
	}
	if s.File != "" {
		cfg.Output = OutputConfig{File: s.File}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	switch {
	case c.Format != "json" && c.Format != "console":
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	case c.Output == OutputConfig{}:
		return errors.New("at least one output must be enabled (stdout, stderr, file or otel)")
	case c.Sampling.Enabled && c.Sampling.Tick.Duration() <= 0:
		return errors.New("sampling tick must be > 0 when sampling enabled")
	case c.Caller.Enabled && c.Caller.Skip < 0:
		return fmt.Errorf("caller skip must be >= 0, got %d", c.Caller.Skip)
	}

	if c.Redaction.Enabled {
		for _, p := range c.Redaction.Patterns {
			if len(p) > maxPatternLen {
				return fmt.Errorf("redaction pattern longer than %d chars: %q", maxPatternLen, p)
			}
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("invalid redaction pattern %q: %w", p, err)
			}
		}
	}

	for k, v := range c.Fields {
		if k == "" || v == "" {
			return fmt.Errorf("static field %q=%q: key and value must be non-empty", k, v)
		}
	}
	return nil
}
