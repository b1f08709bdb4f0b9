package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PROJECTDECK_"
)

// LoadWithFile loads configuration from YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PROJECTDECK_CATALOG_BASE_URL, PROJECTDECK_VIEW_SORT, etc.)
//  2. YAML config file (~/.config/projectdeck/config.yaml)
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, uses
// the default path. A missing file is not an error.
//
// # Security Considerations
//
// The file must have 0600 or 0400 permissions, be at most 1MB, and live in
// ~/.config/projectdeck/ or /etc/projectdeck/. Symlinks are resolved before
// the directory check.
//
// # Environment Variable Mapping
//
// The prefix is stripped and the remainder split on its first underscore:
//
//	PROJECTDECK_CATALOG_BASE_URL -> catalog.base_url
//	PROJECTDECK_SERVER_HTTP_PORT -> server.http_port
//	PROJECTDECK_SESSION_DISPLAY_NAME -> session.display_name
func LoadWithFile(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	k := koanf.New(".")
	content, err := readConfigFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// readConfigFile checks permissions and size on the open descriptor, so
// the file cannot be swapped between the check and the read.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps PROJECTDECK_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// Dir returns the per-user projectdeck configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "projectdeck"), nil
}

// DefaultPath returns ~/.config/projectdeck/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the projectdeck config directory with 0700
// permissions if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// Paths that don't exist yet are validated as given.
		resolvedPath = absPath
	}

	userDir, err := Dir()
	if err != nil {
		return err
	}

	allowedDirs := []string{userDir, "/etc/projectdeck"}
	for _, dir := range allowedDirs {
		if resolvedPath == dir || strings.HasPrefix(resolvedPath, dir+string(filepath.Separator)) {
			return nil
		}
		// TempDir based homes may themselves sit behind a symlink.
		if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil &&
			strings.HasPrefix(resolvedPath, resolvedDir+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/projectdeck/ or /etc/projectdeck/")
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// applyDefaults fills unset fields. web_url follows the catalog base URL
// unless set explicitly.
func applyDefaults(cfg *Config) {
	setDefault(&cfg.Catalog.BaseURL, "http://localhost:8787")
	setDefault(&cfg.Catalog.Timeout, 10*time.Second)

	setDefault(&cfg.View.Sort, "recent")
	setDefault(&cfg.View.Locale, "en")
	setDefault(&cfg.View.WebURL, cfg.Catalog.BaseURL)

	setDefault(&cfg.Server.Host, "127.0.0.1")
	setDefault(&cfg.Server.Port, 8787)
	setDefault(&cfg.Server.ShutdownTimeout, 10*time.Second)
	setDefault(&cfg.Server.RateLimit, 50)
	setDefault(&cfg.Server.RateBurst, 100)

	setDefault(&cfg.Logging.Level, "info")
	setDefault(&cfg.Logging.Format, "json")
	if dir, err := Dir(); err == nil {
		setDefault(&cfg.Logging.File, filepath.Join(dir, "projectdeck.log"))
	}

	setDefault(&cfg.Telemetry.ServiceName, "projectdeck")
	setDefault(&cfg.Telemetry.Endpoint, "localhost:4317")
	setDefault(&cfg.Telemetry.Protocol, "grpc")
	setDefault(&cfg.Telemetry.SampleRate, 1.0)
}
