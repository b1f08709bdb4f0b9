// Package main implements the projectdeck CLI: an interactive project
// browser plus the commands that talk to, or run, the catalog server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/catalog"
	"github.com/fyrsmithlabs/projectdeck/internal/config"
	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/telemetry"
)

var (
	// cfgFile overrides the default config path
	cfgFile string
	// serverURL overrides catalog.base_url when set
	serverURL string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projectdeck",
	Short: "Browse and join projects from a projectdeck catalog",
	Long: `projectdeck presents the project catalog as a searchable, sortable list
and opens the selected project's page.

Running projectdeck without a subcommand starts the interactive browser.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/projectdeck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "catalog server URL (overrides catalog.base_url)")

	addViewFlags(rootCmd)

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		webFollows := cfg.View.WebURL == cfg.Catalog.BaseURL
		cfg.Catalog.BaseURL = serverURL
		if webFollows {
			cfg.View.WebURL = serverURL
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	return cfg, nil
}

// logTarget selects where a command's logs go.
type logTarget int

const (
	// logToFile keeps the terminal free for the interactive view.
	logToFile logTarget = iota
	logToStderr
)

// app bundles the ambient services every command needs.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	tel    *telemetry.Telemetry
}

// setup loads config and starts logging and telemetry.
func setup(ctx context.Context, target logTarget) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	if target == logToStderr {
		logCfg.Output.File = ""
		logCfg.Output.Stderr = true
	}
	if lp := tel.LoggerProvider(); lp != nil {
		logCfg.Output.OTEL = true
	}

	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.String("reason", h.Reason))
	}
	if cfg.Catalog.Token.IsSet() {
		logger.Debug(ctx, "catalog token configured", logging.Secret("token", cfg.Catalog.Token))
	}

	return &app{cfg: cfg, logger: logger, tel: tel}, nil
}

// Close flushes telemetry and the logger.
func (a *app) Close(ctx context.Context) {
	if err := a.tel.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
	}
	_ = a.logger.Close()
}

// client builds the catalog API client.
func (a *app) client() *catalog.Client {
	return catalog.NewClient(catalog.Config{
		BaseURL: a.cfg.Catalog.BaseURL,
		Timeout: a.cfg.Catalog.Timeout,
		Token:   a.cfg.Catalog.Token,
	}, catalog.WithTracer(a.tel.Tracer(telemetry.ScopeCatalog)))
}
