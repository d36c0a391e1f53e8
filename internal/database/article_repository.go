package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/faqhub/internal/domain"
)

// SlugConstraint is the unique constraint on articles.slug.
const SlugConstraint = "articles_slug_key"

// articleSelectColumns lists columns for SELECT queries on articles.
const articleSelectColumns = `id, url, question, answer, category, platform, content_type, source,
	language, slug, content_hash, is_duplicate, duplicate_of, is_verified, votes, quality_tier,
	crawl_status, embedding_status, created_at, updated_at, last_crawled_at`

// PlatformStats summarizes the stored articles of one platform.
type PlatformStats struct {
	Platform   string `db:"platform"`
	Articles   int    `db:"articles"`
	Duplicates int    `db:"duplicates"`
	Incomplete int    `db:"incomplete"`
}

// ArticleRepository handles database operations for articles.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// UpsertByURL inserts the article or updates the row with the same URL. The
// stored slug and created_at of an existing row are kept. It returns the row
// id and whether the row was created.
func (r *ArticleRepository) UpsertByURL(ctx context.Context, a *domain.Article) (id int64, created bool, err error) {
	query := `
		INSERT INTO articles (
			url, question, answer, category, platform, content_type, source, language, slug,
			content_hash, is_duplicate, duplicate_of, is_verified, votes, quality_tier,
			crawl_status, embedding_status, last_crawled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		ON CONFLICT (url) DO UPDATE SET
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			category = EXCLUDED.category,
			platform = EXCLUDED.platform,
			content_type = EXCLUDED.content_type,
			source = EXCLUDED.source,
			language = EXCLUDED.language,
			content_hash = EXCLUDED.content_hash,
			is_duplicate = EXCLUDED.is_duplicate,
			duplicate_of = EXCLUDED.duplicate_of,
			is_verified = EXCLUDED.is_verified,
			votes = EXCLUDED.votes,
			quality_tier = EXCLUDED.quality_tier,
			crawl_status = EXCLUDED.crawl_status,
			embedding_status = EXCLUDED.embedding_status,
			last_crawled_at = NOW(),
			updated_at = NOW()
		RETURNING id, (xmax = 0) AS created
	`

	row := r.db.QueryRowxContext(ctx, query,
		a.URL, a.Question, a.Answer, a.Category, a.Platform, a.ContentType, a.Source, a.Language, a.Slug,
		a.ContentHash, a.IsDuplicate, a.DuplicateOf, a.IsVerified, a.Votes, a.QualityTier,
		a.CrawlStatus, a.EmbeddingStatus,
	)
	if scanErr := row.Scan(&id, &created); scanErr != nil {
		return 0, false, fmt.Errorf("failed to upsert article %s: %w", a.URL, scanErr)
	}

	return id, created, nil
}

// FindByURL returns the article stored for url.
func (r *ArticleRepository) FindByURL(ctx context.Context, url string) (*domain.Article, error) {
	return r.findOne(ctx, `SELECT `+articleSelectColumns+` FROM articles WHERE url = $1`, url)
}

// FindBySlug returns the article with the given slug.
func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.findOne(ctx, `SELECT `+articleSelectColumns+` FROM articles WHERE slug = $1`, slug)
}

// FindByContentHash returns the first article with the fingerprint that is
// not a copy of another article.
func (r *ArticleRepository) FindByContentHash(ctx context.Context, hash string) (*domain.Article, error) {
	query := `SELECT ` + articleSelectColumns + ` FROM articles
		WHERE content_hash = $1 AND duplicate_of IS NULL
		ORDER BY id ASC LIMIT 1`
	return r.findOne(ctx, query, hash)
}

// SlugExists reports whether any article uses slug.
func (r *ArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)`
	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// SetEmbeddingStatus records how complete the article's paragraph set is.
func (r *ArticleRepository) SetEmbeddingStatus(ctx context.Context, id int64, status domain.EmbeddingStatus) error {
	query := `UPDATE articles SET embedding_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	return execRequireRows(result, err, fmt.Errorf("article %d: %w", id, domain.ErrNotFound))
}

// SetCrawlStatus marks the article stored for url as active or errored.
func (r *ArticleRepository) SetCrawlStatus(ctx context.Context, url string, status domain.CrawlStatus) error {
	query := `UPDATE articles SET crawl_status = $2, updated_at = NOW() WHERE url = $1`

	result, err := r.db.ExecContext(ctx, query, url, status)
	return execRequireRows(result, err, fmt.Errorf("article %s: %w", url, domain.ErrNotFound))
}

// ListNeedingEmbedding returns active articles whose paragraph set is not
// complete, oldest first. Copies of another article are never embedded.
func (r *ArticleRepository) ListNeedingEmbedding(ctx context.Context, limit int) ([]*domain.Article, error) {
	query := `SELECT ` + articleSelectColumns + ` FROM articles
		WHERE embedding_status <> 'complete' AND crawl_status = 'active' AND duplicate_of IS NULL
		ORDER BY updated_at ASC LIMIT $1`

	var articles []*domain.Article
	if err := r.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list articles needing embedding: %w", err)
	}
	return articles, nil
}

// Stats returns per-platform article counts.
func (r *ArticleRepository) Stats(ctx context.Context) ([]PlatformStats, error) {
	query := `
		SELECT platform,
			COUNT(*) AS articles,
			COUNT(*) FILTER (WHERE duplicate_of IS NOT NULL) AS duplicates,
			COUNT(*) FILTER (WHERE embedding_status <> 'complete') AS incomplete
		FROM articles
		GROUP BY platform
		ORDER BY platform
	`

	var stats []PlatformStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to load article stats: %w", err)
	}
	return stats, nil
}

func (r *ArticleRepository) findOne(ctx context.Context, query string, arg any) (*domain.Article, error) {
	var a domain.Article
	err := r.db.GetContext(ctx, &a, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &a, nil
}
