package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectdeck/internal/catalog"
	"github.com/fyrsmithlabs/projectdeck/internal/discovery"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the filtered and sorted catalog",
	Long: `Fetch the catalog once and print it, filtered and sorted the same way
the interactive view would show it.

Examples:
  # Most recently active projects
  projectdeck list

  # Projects mentioning "lightning", by member count
  projectdeck list --query lightning --sort members`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	addViewFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := setup(ctx, logToStderr)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	view := discovery.NewViewState(
		discovery.WithEngine(discovery.NewEngine(a.cfg.Locale())),
		discovery.WithQuery(queryFlag),
		discovery.WithSortKey(sortKey(a.cfg.View.Sort)),
	)

	projects, fetchErr := a.client().FetchProjects(ctx)
	if fetchErr != nil {
		fields := []zap.Field{zap.Error(fetchErr)}
		var fe *catalog.FetchError
		if errors.As(fetchErr, &fe) {
			fields = append(fields, zap.Stringer("kind", fe.Kind), zap.Int("status", fe.Status))
		}
		a.logger.Warn(ctx, "catalog fetch failed", fields...)
	}
	if err := view.Settle(projects, fetchErr); err != nil {
		return err
	}

	writePresentation(cmd.OutOrStdout(), view.Present())
	return nil
}

// writePresentation renders a presentation as plain text.
func writePresentation(w io.Writer, p discovery.Presentation) {
	switch p.Mode {
	case discovery.ModeLoading:
		for i := 0; i < p.Placeholders; i++ {
			fmt.Fprintln(w, "…")
		}
	case discovery.ModeEmpty:
		fmt.Fprintln(w, p.Empty.Title)
		fmt.Fprintln(w, p.Empty.Message)
		if p.Empty.CanCreate {
			fmt.Fprintln(w, "Create one with: projectdeck create --name <name>")
		}
	case discovery.ModePopulated:
		for i, c := range p.Cards {
			if i > 0 {
				fmt.Fprintln(w)
			}
			title := c.Name
			if c.Badge != "" {
				title += " [" + c.Badge + "]"
			}
			fmt.Fprintf(w, "%s  %s\n", title, c.Route)
			fmt.Fprintf(w, "  %s\n", c.Summary)

			counters := make([]string, len(c.Counters))
			for j, ctr := range c.Counters {
				counters[j] = fmt.Sprintf("%d %s", ctr.Value, ctr.Label)
			}
			fmt.Fprintf(w, "  %s\n", strings.Join(counters, " · "))
		}
	}
}
