package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/domain"
)

func testParagraphs(n int) []domain.Paragraph {
	out := make([]domain.Paragraph, 0, n)
	for i := range n {
		out = append(out, domain.Paragraph{
			Position:  i,
			Text:      "paragraph text",
			Embedding: pgvector.NewVector([]float32{float32(i), 1}),
		})
	}
	return out
}

func TestParagraphRepository_ReplaceParagraphs(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewParagraphRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM article_paragraphs WHERE article_id = \\$1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	for i := range 2 {
		mock.ExpectExec("INSERT INTO article_paragraphs").
			WithArgs(int64(5), i, "paragraph text", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceParagraphs(context.Background(), 5, testParagraphs(2)))

	expectationsMet(t, mock)
}

func TestParagraphRepository_ReplaceParagraphs_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewParagraphRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM article_paragraphs").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO article_paragraphs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO article_paragraphs").
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := repo.ReplaceParagraphs(context.Background(), 5, testParagraphs(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paragraph 1 of article 5")

	expectationsMet(t, mock)
}

func TestParagraphRepository_CountByArticle(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewParagraphRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM article_paragraphs").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountByArticle(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	expectationsMet(t, mock)
}

var candidateColumns = []string{
	"article_id", "url", "slug", "question", "platform", "category", "position", "text", "embedding",
}

func TestParagraphRepository_SearchCandidates_Filters(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewParagraphRepository(db)

	mock.ExpectQuery("a.platform = \\$2 AND a.category = \\$3\\s+ORDER BY p.embedding <=> \\$1\\s+LIMIT \\$4").
		WithArgs(sqlmock.AnyArg(), "airbnb", "payments", 200).
		WillReturnRows(sqlmock.NewRows(candidateColumns).
			AddRow(int64(1), "https://a", "refunds", "Refunds?", "airbnb", "payments", 0, "text", "[0.5,0.25]"))

	got, err := repo.SearchCandidates(context.Background(), []float32{1, 0},
		database.SearchFilter{Platform: "airbnb", Category: "payments"}, 200)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float32{0.5, 0.25}, got[0].Embedding.Slice())
	assert.Equal(t, "refunds", got[0].Slug)

	expectationsMet(t, mock)
}

func TestParagraphRepository_SearchCandidates_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	repo := database.NewParagraphRepository(db)

	mock.ExpectQuery("a.duplicate_of IS NULL\\s+ORDER BY p.embedding <=> \\$1\\s+LIMIT \\$2").
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows(candidateColumns))

	got, err := repo.SearchCandidates(context.Background(), []float32{1, 0}, database.SearchFilter{}, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	expectationsMet(t, mock)
}
