package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/http"
	"github.com/fyrsmithlabs/projectdeck/internal/store"
	"github.com/fyrsmithlabs/projectdeck/internal/telemetry"
)

var (
	catalogFile string
	watchFlag   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog server",
	Long: `Run the catalog HTTP server.

Projects are seeded from a JSON, YAML or TOML file. With --watch the file
is reloaded whenever it changes; a reload that fails validation keeps the
previous catalog. Projects created through the API are kept in memory.

Examples:
  # Serve a seed file
  projectdeck serve --catalog ./projects.yaml

  # Serve and reload on change
  projectdeck serve --catalog ./projects.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&catalogFile, "catalog", "", "seed file (overrides server.catalog_file)")
	serveCmd.Flags().BoolVar(&watchFlag, "watch", false, "reload the seed file when it changes (overrides server.watch)")
}

func runServe(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, logToStderr)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if catalogFile != "" {
		a.cfg.Server.CatalogFile = catalogFile
	}
	if watchFlag {
		a.cfg.Server.Watch = true
	}

	return serve(ctx, a)
}

// serve runs the catalog server until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	cfg := a.cfg.Server
	logger := a.logger.Named("serve")

	st, err := store.Open(cfg.CatalogFile, store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	logger.Info(ctx, "starting projectdeck server",
		zap.String("catalog_file", cfg.CatalogFile),
		zap.Int("projects", st.Len()),
		zap.Bool("watch", cfg.Watch),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout))

	srv, err := http.NewServer(st, logger, &http.Config{
		Host:      cfg.Host,
		Port:      cfg.Port,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	},
		http.WithMeter(a.tel.Meter(telemetry.ScopeHTTP)),
		http.WithVersion(version),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	watchErr := make(chan error, 1)
	if cfg.Watch && cfg.CatalogFile != "" {
		go func() { watchErr <- st.Watch(ctx) }()
	}

	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start() }()

wait:
	for {
		select {
		case err := <-srvErr:
			if errors.Is(err, nethttp.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)
		case err := <-watchErr:
			if err != nil {
				logger.Error(ctx, "catalog watcher stopped", zap.Error(err))
			}
			watchErr = nil
		case <-ctx.Done():
			break wait
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}
