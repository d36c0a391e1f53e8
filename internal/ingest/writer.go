// Package ingest runs raw platform content through dedup, language, quality,
// embedding and slug stages and persists the result.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/metrics"
)

// ArticleStore persists articles.
type ArticleStore interface {
	FindByURL(ctx context.Context, url string) (*domain.Article, error)
	UpsertByURL(ctx context.Context, a *domain.Article) (id int64, created bool, err error)
	SetEmbeddingStatus(ctx context.Context, id int64, status domain.EmbeddingStatus) error
}

// ParagraphStore persists paragraph embeddings.
type ParagraphStore interface {
	ReplaceParagraphs(ctx context.Context, articleID int64, paragraphs []domain.Paragraph) error
}

// WriteResult is what the writer stored.
type WriteResult struct {
	ID              int64
	Created         bool
	EmbeddingStatus domain.EmbeddingStatus
}

// Writer stores an article and its paragraph set. The article row is written
// first and is never rolled back; a failed paragraph replacement leaves the
// previous paragraphs in place and marks the article stale.
type Writer struct {
	articles   ArticleStore
	paragraphs ParagraphStore
	policy     retry.Policy
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewWriter creates a Writer. m may be nil.
func NewWriter(articles ArticleStore, paragraphs ParagraphStore, policy retry.Policy, log logger.Logger, m *metrics.Metrics) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{articles: articles, paragraphs: paragraphs, policy: policy, logger: log, metrics: m}
}

// Upsert writes the article keyed by URL. When replaceParagraphs is true the
// stored paragraph set is swapped for paragraphs, which may be empty.
func (w *Writer) Upsert(
	ctx context.Context,
	article *domain.Article,
	paragraphs []domain.Paragraph,
	replaceParagraphs bool,
) (WriteResult, error) {
	type upserted struct {
		id      int64
		created bool
	}

	row, err := retry.Do(ctx, w.policy, func(ctx context.Context) (upserted, error) {
		id, created, upsertErr := w.articles.UpsertByURL(ctx, article)
		return upserted{id: id, created: created}, upsertErr
	})
	if err != nil {
		return WriteResult{}, fmt.Errorf("write article: %w", err)
	}

	res := WriteResult{ID: row.id, Created: row.created, EmbeddingStatus: article.EmbeddingStatus}
	if !replaceParagraphs {
		return res, nil
	}

	replaceErr := retry.Run(ctx, w.policy, func(ctx context.Context) error {
		return w.paragraphs.ReplaceParagraphs(ctx, row.id, paragraphs)
	})
	w.metrics.RecordParagraphWrite(replaceErr == nil)
	if replaceErr == nil {
		return res, nil
	}

	w.logger.Error("Paragraph write failed, article kept with stale embeddings",
		logger.Int64("article_id", row.id),
		logger.String("url", article.URL),
		logger.Int("paragraphs", len(paragraphs)),
		logger.Error(replaceErr),
	)

	res.EmbeddingStatus = domain.EmbeddingStatusStale
	if statusErr := w.articles.SetEmbeddingStatus(ctx, row.id, domain.EmbeddingStatusStale); statusErr != nil &&
		!errors.Is(statusErr, domain.ErrNotFound) {
		w.logger.Error("Failed to mark article stale",
			logger.Int64("article_id", row.id),
			logger.Error(statusErr),
		)
	}

	return res, nil
}

// ReplaceEmbeddings swaps the paragraph set of a stored article and records
// status. On failure the article's status is left unchanged.
func (w *Writer) ReplaceEmbeddings(
	ctx context.Context,
	articleID int64,
	paragraphs []domain.Paragraph,
	status domain.EmbeddingStatus,
) error {
	replaceErr := retry.Run(ctx, w.policy, func(ctx context.Context) error {
		return w.paragraphs.ReplaceParagraphs(ctx, articleID, paragraphs)
	})
	w.metrics.RecordParagraphWrite(replaceErr == nil)
	if replaceErr != nil {
		return fmt.Errorf("replace paragraphs of article %d: %w", articleID, replaceErr)
	}

	statusErr := retry.Run(ctx, w.policy, func(ctx context.Context) error {
		return w.articles.SetEmbeddingStatus(ctx, articleID, status)
	})
	if statusErr != nil {
		return fmt.Errorf("set embedding status of article %d: %w", articleID, statusErr)
	}
	return nil
}
