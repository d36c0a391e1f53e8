// Package crawl implements the crawl command.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl [platform...]",
		Short: "Crawl platforms once and ingest their articles",
		Long: `Crawl discovers article URLs on the named platforms (every active
platform when none are named), fetches each article and runs it through the
ingestion pipeline. A summary table is printed when the run ends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps, args)
		},
	}
}

func run(ctx context.Context, deps common.CommandDeps, platforms []string) error {
	app, err := common.NewApp(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			deps.Logger.Warn("Failed to close resources", logger.Error(closeErr))
		}
	}()

	runner, err := app.NewRunner()
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(ctx, platforms...)
	if summary != nil {
		RenderSummary(os.Stdout, summary)
	}
	if errors.Is(runErr, context.Canceled) {
		deps.Logger.Info("Crawl interrupted")
		return nil
	}
	return runErr
}
