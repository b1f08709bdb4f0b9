package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check catalog server health",
	Long: `Check the health status of the catalog server.

Examples:
  # Check health
  projectdeck health

  # Check health on a different server
  projectdeck health --server http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := setup(ctx, logToStderr)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	status, err := a.client().Health(ctx)
	if err != nil {
		return fmt.Errorf("health check against %s failed: %w", a.cfg.Catalog.BaseURL, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", status)
	fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", a.cfg.Catalog.BaseURL)
	return nil
}
