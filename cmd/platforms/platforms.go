// Package platforms implements the platforms command.
package platforms

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/platform"
)

// Command returns the platforms command.
func Command() *cobra.Command {
	var withStats bool

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List configured platforms and whether they will be crawled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps, withStats)
		},
	}

	cmd.Flags().BoolVar(&withStats, "stats", false, "include stored article counts from the database")
	return cmd
}

func run(ctx context.Context, deps common.CommandDeps, withStats bool) error {
	var stats []database.PlatformStats
	if withStats {
		db, err := database.Connect(ctx, deps.Config.Database, deps.Config.Crawler.Retry.Policy(), deps.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		stats, err = database.NewArticleRepository(db).Stats(ctx)
		if err != nil {
			return err
		}
	}

	RenderTable(os.Stdout, platform.Statuses(deps.Config), stats)
	return nil
}

// RenderTable writes one row per configured platform. Stats columns are
// added when stats is non-nil.
func RenderTable(w io.Writer, statuses []platform.Status, stats []database.PlatformStats) {
	byPlatform := make(map[string]database.PlatformStats, len(stats))
	for _, s := range stats {
		byPlatform[s.Platform] = s
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Name", "Kind", "Content Type", "Active", "Rate/s", "Max Articles", "Reason"}
	if stats != nil {
		header = append(header, "Articles", "Duplicates", "Incomplete")
	}
	t.AppendHeader(header)

	for _, s := range statuses {
		active := "yes"
		if !s.Enabled {
			active = "no"
		}
		row := table.Row{s.Name, s.Kind, s.ContentType, active, s.RateLimit, s.MaxArticles, s.Reason}
		if stats != nil {
			st := byPlatform[s.Name]
			row = append(row, st.Articles, st.Duplicates, st.Incomplete)
		}
		t.AppendRow(row)
	}

	t.Render()
}
