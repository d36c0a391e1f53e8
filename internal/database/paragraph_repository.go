package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/jonesrussell/faqhub/internal/domain"
)

// SearchFilter narrows candidate paragraphs. Empty fields match everything.
type SearchFilter struct {
	Platform string
	Category string
}

// Candidate is one paragraph returned by a vector search, joined with its article.
type Candidate struct {
	ArticleID int64           `db:"article_id"`
	URL       string          `db:"url"`
	Slug      string          `db:"slug"`
	Question  string          `db:"question"`
	Platform  string          `db:"platform"`
	Category  string          `db:"category"`
	Position  int             `db:"position"`
	Text      string          `db:"text"`
	Embedding pgvector.Vector `db:"embedding"`
}

// ParagraphRepository handles database operations for article paragraphs.
type ParagraphRepository struct {
	db *sqlx.DB
}

// NewParagraphRepository creates a new paragraph repository.
func NewParagraphRepository(db *sqlx.DB) *ParagraphRepository {
	return &ParagraphRepository{db: db}
}

// ReplaceParagraphs swaps the article's paragraph set for paragraphs inside
// one transaction, so readers see either the old set or the new one.
func (r *ParagraphRepository) ReplaceParagraphs(ctx context.Context, articleID int64, paragraphs []domain.Paragraph) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin paragraph transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, delErr := tx.ExecContext(ctx, `DELETE FROM article_paragraphs WHERE article_id = $1`, articleID); delErr != nil {
		return fmt.Errorf("failed to delete paragraphs of article %d: %w", articleID, delErr)
	}

	insertQuery := `INSERT INTO article_paragraphs (article_id, position, text, embedding) VALUES ($1, $2, $3, $4)`
	for _, p := range paragraphs {
		if _, insErr := tx.ExecContext(ctx, insertQuery, articleID, p.Position, p.Text, p.Embedding); insErr != nil {
			return fmt.Errorf("failed to insert paragraph %d of article %d: %w", p.Position, articleID, insErr)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit paragraphs of article %d: %w", articleID, commitErr)
	}
	return nil
}

// CountByArticle returns how many paragraphs are stored for the article.
func (r *ParagraphRepository) CountByArticle(ctx context.Context, articleID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM article_paragraphs WHERE article_id = $1`, articleID); err != nil {
		return 0, fmt.Errorf("failed to count paragraphs: %w", err)
	}
	return n, nil
}

// SearchCandidates returns up to limit paragraphs closest to query by cosine
// distance, restricted to active, non-duplicate articles.
func (r *ParagraphRepository) SearchCandidates(
	ctx context.Context,
	query []float32,
	filter SearchFilter,
	limit int,
) ([]Candidate, error) {
	conditions := []string{"a.crawl_status = 'active'", "a.duplicate_of IS NULL"}
	args := []any{pgvector.NewVector(query)}

	if filter.Platform != "" {
		args = append(args, filter.Platform)
		conditions = append(conditions, fmt.Sprintf("a.platform = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("a.category = $%d", len(args)))
	}
	args = append(args, limit)

	sqlQuery := fmt.Sprintf(`
		SELECT p.article_id, a.url, a.slug, a.question, a.platform, a.category,
			p.position, p.text, p.embedding
		FROM article_paragraphs p
		JOIN articles a ON a.id = p.article_id
		WHERE %s
		ORDER BY p.embedding <=> $1
		LIMIT $%d
	`, strings.Join(conditions, " AND "), len(args))

	var candidates []Candidate
	if err := r.db.SelectContext(ctx, &candidates, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to search paragraphs: %w", err)
	}
	return candidates, nil
}
