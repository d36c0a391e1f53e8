// Package reembed implements the reembed command.
package reembed

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/faqhub/cmd/common"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/ingest"
)

const defaultBatchSize = 100

// Command returns the reembed command.
func Command() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reembed",
		Short: "Regenerate embeddings for stale, partial or missing paragraph sets",
		Long: `Reembed selects articles whose embedding_status is not complete and
regenerates their paragraph embeddings, replacing the stored set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}
			return run(cmd.Context(), deps, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultBatchSize, "maximum number of articles to process")
	return cmd
}

func run(ctx context.Context, deps common.CommandDeps, limit int) error {
	app, err := common.NewApp(ctx, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			deps.Logger.Warn("Failed to close resources", logger.Error(closeErr))
		}
	}()

	articles, err := app.Articles.ListNeedingEmbedding(ctx, limit)
	if err != nil {
		return err
	}

	counts := make(map[domain.EmbeddingStatus]int)
	failed := 0
	for _, article := range articles {
		if ctx.Err() != nil {
			break
		}

		status, reembedErr := app.Pipeline.Reembed(ctx, article)
		if errors.Is(reembedErr, ingest.ErrEmbeddingDisabled) {
			return reembedErr
		}
		if reembedErr != nil {
			deps.Logger.Error("Re-embedding failed",
				logger.Int64("article_id", article.ID),
				logger.String("url", article.URL),
				logger.Error(reembedErr),
			)
			failed++
			continue
		}
		counts[status]++
	}

	deps.Logger.Info("Re-embedding finished",
		logger.Int("selected", len(articles)),
		logger.Int("complete", counts[domain.EmbeddingStatusComplete]),
		logger.Int("partial", counts[domain.EmbeddingStatusPartial]),
		logger.Int("none", counts[domain.EmbeddingStatusNone]),
		logger.Int("failed", failed),
	)
	return nil
}
