package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/search"
)

type fixedEmbedder struct {
	vector []float32
	err    error
	calls  []string
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls = append(e.calls, text)
	return e.vector, e.err
}

type fakeCandidates struct {
	candidates []database.Candidate
	err        error
	gotFilter  database.SearchFilter
	gotLimit   int
}

func (f *fakeCandidates) SearchCandidates(
	_ context.Context, _ []float32, filter database.SearchFilter, limit int,
) ([]database.Candidate, error) {
	f.gotFilter = filter
	f.gotLimit = limit
	return f.candidates, f.err
}

type fakeArticles struct {
	bySlug map[string]*domain.Article
}

func (f *fakeArticles) FindBySlug(_ context.Context, slug string) (*domain.Article, error) {
	if a, ok := f.bySlug[slug]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func candidate(articleID int64, position int, text string, vec ...float32) database.Candidate {
	return database.Candidate{
		ArticleID: articleID,
		URL:       "https://help.example.com/" + text,
		Slug:      "slug-" + text,
		Question:  "question " + text,
		Platform:  "acme",
		Category:  "billing",
		Position:  position,
		Text:      text,
		Embedding: pgvector.NewVector(vec),
	}
}

func TestService_RanksArticlesByBestParagraph(t *testing.T) {
	t.Parallel()

	store := &fakeCandidates{candidates: []database.Candidate{
		candidate(1, 0, "weak", 0.6, 0.8),     // 0.6
		candidate(1, 1, "strong", 0.95, 0.31), // ~0.95
		candidate(2, 0, "perfect", 1, 0),      // 1.0
		candidate(3, 0, "orthogonal", 0, 1),   // 0
		candidate(4, 0, "below", 0.7, 0.72),   // ~0.697
	}}
	svc := search.NewService(&fixedEmbedder{vector: []float32{1, 0}}, store, nil, search.Config{})

	resp, err := svc.Search(context.Background(), search.Request{Query: "  refund  ", Platform: "acme"})
	require.NoError(t, err)

	require.Len(t, resp.Articles, 2)
	assert.Equal(t, int64(2), resp.Articles[0].ID)
	assert.InDelta(t, 1.0, resp.Articles[0].Score, 1e-6)
	assert.Equal(t, int64(1), resp.Articles[1].ID)
	assert.Equal(t, []string{"strong"}, resp.Articles[1].Snippets)

	assert.Equal(t, "acme", store.gotFilter.Platform)
	assert.Equal(t, search.DefaultCandidateLimit, store.gotLimit)
}

func TestService_CapsSnippetsAndResults(t *testing.T) {
	t.Parallel()

	var cands []database.Candidate
	for i := range 5 {
		cands = append(cands, candidate(1, i, string(rune('a'+i)), 1, 0))
	}
	cands = append(cands, candidate(2, 0, "other", 1, 0.1))

	svc := search.NewService(&fixedEmbedder{vector: []float32{1, 0}}, &fakeCandidates{candidates: cands}, nil,
		search.Config{MaxSnippets: 3})

	resp, err := svc.Search(context.Background(), search.Request{Query: "q", Limit: 1})
	require.NoError(t, err)

	require.Len(t, resp.Articles, 1)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Articles[0].Snippets)
}

func TestService_EmptyQuery(t *testing.T) {
	t.Parallel()

	embedder := &fixedEmbedder{}
	svc := search.NewService(embedder, &fakeCandidates{}, nil, search.Config{})

	_, err := svc.Search(context.Background(), search.Request{Query: "   "})
	require.ErrorIs(t, err, search.ErrEmptyQuery)
	assert.Empty(t, embedder.calls)
}

func TestService_PropagatesFailures(t *testing.T) {
	t.Parallel()

	svc := search.NewService(&fixedEmbedder{err: errors.New("rate limited")}, &fakeCandidates{}, nil, search.Config{})
	_, err := svc.Search(context.Background(), search.Request{Query: "q"})
	require.Error(t, err)

	svc = search.NewService(&fixedEmbedder{vector: []float32{1}}, &fakeCandidates{err: errors.New("db")}, nil, search.Config{})
	_, err = svc.Search(context.Background(), search.Request{Query: "q"})
	require.Error(t, err)
}

func TestService_Article(t *testing.T) {
	t.Parallel()

	articles := &fakeArticles{bySlug: map[string]*domain.Article{"refunds": {ID: 7, Slug: "refunds"}}}
	svc := search.NewService(&fixedEmbedder{}, &fakeCandidates{}, articles, search.Config{})

	got, err := svc.Article(context.Background(), "refunds")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)

	_, err = svc.Article(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
