package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

var createReq project.CreateRequest

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project in the catalog",
	Long: `Create a project through the catalog creation endpoint.

The slug is derived from the name when omitted.

Examples:
  # Create a project
  projectdeck create --name "Lightning Tools"

  # With an explicit slug and token
  projectdeck create --name "Lightning Tools" --slug ln-tools --token-symbol LNT`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createReq.Name, "name", "", "project name (required)")
	createCmd.Flags().StringVar(&createReq.Slug, "slug", "", "URL slug (derived from name when empty)")
	createCmd.Flags().StringVar(&createReq.Description, "description", "", "project description")
	createCmd.Flags().StringVar(&createReq.TokenSymbol, "token-symbol", "", "token symbol")
	createCmd.Flags().StringVar(&createReq.LogoURL, "logo-url", "", "logo image URL")
	createCmd.Flags().StringVar(&createReq.RepositoryURL, "repository-url", "", "source repository URL")
	createCmd.Flags().StringVar(&createReq.Website, "website", "", "project website")
	createCmd.Flags().StringSliceVar(&createReq.Tags, "tag", nil, "tag (repeatable)")
	_ = createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(createReq.Name) == "" {
		return project.ErrEmptyProjectName
	}

	a, err := setup(ctx, logToStderr)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	created, err := a.client().CreateProject(ctx, createReq)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	a.logger.Info(ctx, "project created",
		zap.String("id", created.ID),
		zap.String("slug", created.Slug))

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Name, created.Slug)
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strings.TrimRight(a.cfg.View.WebURL, "/"), created.Route())
	return nil
}
