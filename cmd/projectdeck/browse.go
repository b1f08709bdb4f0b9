package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/discovery"
	"github.com/fyrsmithlabs/projectdeck/internal/tui"
)

var (
	queryFlag string
	sortFlag  string
	noBrowser bool
)

// addViewFlags registers the flags shared by browse and list.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "initial search query")
	cmd.Flags().StringVarP(&sortFlag, "sort", "s", "", "sort key: recent, name, members or reputation (default from view.sort)")
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the project catalog interactively",
	Long: `Browse the project catalog in an interactive terminal view.

Type to filter by name or description, tab to change the sort order and
enter to open the selected project in the browser.

Examples:
  # Browse with defaults
  projectdeck browse

  # Start filtered and sorted by reputation
  projectdeck browse --query wallet --sort reputation`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	addViewFlags(browseCmd)
	rootCmd.PersistentFlags().BoolVar(&noBrowser, "no-browser", false, "print project URLs instead of opening a browser")
}

// sortKey resolves the sort flag against the configured default.
func sortKey(configured string) discovery.SortKey {
	if sortFlag != "" {
		return discovery.ParseSortKey(sortFlag)
	}
	return discovery.ParseSortKey(configured)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := setup(ctx, logToFile)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	launch := openBrowser
	if noBrowser {
		launch = nil
	}
	nav, err := tui.NewURLNavigator(a.cfg.View.WebURL, launch)
	if err != nil {
		return err
	}

	model := tui.New(tui.Config{
		Fetcher:   a.client(),
		Navigator: nav,
		Logger:    a.logger,
		User:      a.cfg.Session,
		Engine:    discovery.NewEngine(a.cfg.Locale()),
		Query:     queryFlag,
		SortKey:   sortKey(a.cfg.View.Sort),
	})

	a.logger.Info(ctx, "starting browser view",
		zap.String("catalog", a.cfg.Catalog.BaseURL),
		zap.String("sort", string(sortKey(a.cfg.View.Sort))))

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("browser view failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\n", m.Err())
	}
	if target := nav.Last(); target != "" {
		fmt.Fprintln(cmd.OutOrStdout(), target)
	}
	return nil
}
