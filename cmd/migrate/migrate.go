// Package migrate implements the migrate command.
package migrate

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/database"
)

// Command returns the migrate command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Migrate creates the articles and article_paragraphs tables, enabling the
pgvector extension. The vector column is sized by embedding.dimensions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps common.CommandDeps) error {
	db, err := database.Connect(ctx, deps.Config.Database, deps.Config.Crawler.Retry.Policy(), deps.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applied, err := database.Migrate(ctx, db, database.MigrationParams{
		Dimensions: deps.Config.Embedding.Dimensions,
	}, deps.Logger)
	if err != nil {
		return err
	}

	deps.Logger.Info("Migrations complete", logger.Strings("applied", applied))
	return nil
}
