// Package search answers natural-language questions from stored paragraph embeddings.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonesrussell/faqhub/internal/database"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/embedding"
)

// Default ranking settings.
const (
	DefaultMinScore       = 0.7
	DefaultCandidateLimit = 200
	DefaultResultLimit    = 10
	DefaultMaxSnippets    = 3
	maxResultLimit        = 50
)

// ErrEmptyQuery is returned when the query has no text.
var ErrEmptyQuery = errors.New("query is empty")

// CandidateStore returns paragraphs nearest to a query vector.
type CandidateStore interface {
	SearchCandidates(ctx context.Context, query []float32, filter database.SearchFilter, limit int) ([]database.Candidate, error)
}

// ArticleFinder looks up one article by slug.
type ArticleFinder interface {
	FindBySlug(ctx context.Context, slug string) (*domain.Article, error)
}

// Config holds ranking settings. Zero values fall back to defaults.
type Config struct {
	MinScore       float64
	CandidateLimit int
	ResultLimit    int
	MaxSnippets    int
}

// Request is one search query.
type Request struct {
	Query    string
	Platform string
	Category string
	// Limit caps the number of articles returned; zero uses the configured limit.
	Limit int
}

// Hit is one matching article.
type Hit struct {
	ID       int64    `json:"id"`
	URL      string   `json:"url"`
	Slug     string   `json:"slug"`
	Question string   `json:"question"`
	Platform string   `json:"platform"`
	Category string   `json:"category"`
	Snippets []string `json:"snippets"`
	Score    float64  `json:"score"`
}

// Response is the ranked result of a query.
type Response struct {
	Articles []Hit `json:"articles"`
}

// Service ranks articles by the cosine similarity of their best paragraph.
type Service struct {
	embedder   embedding.Embedder
	candidates CandidateStore
	articles   ArticleFinder
	cfg        Config
}

// NewService creates a Service.
func NewService(embedder embedding.Embedder, candidates CandidateStore, articles ArticleFinder, cfg Config) *Service {
	if cfg.MinScore == 0 {
		cfg.MinScore = DefaultMinScore
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = DefaultCandidateLimit
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.MaxSnippets <= 0 {
		cfg.MaxSnippets = DefaultMaxSnippets
	}
	return &Service{embedder: embedder, candidates: candidates, articles: articles, cfg: cfg}
}

type scoredParagraph struct {
	position int
	text     string
	score    float64
}

// Search embeds the query and ranks stored articles against it.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.candidates.SearchCandidates(ctx, vector, database.SearchFilter{
		Platform: req.Platform,
		Category: req.Category,
	}, s.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}

	hits := s.rank(vector, candidates)

	limit := s.cfg.ResultLimit
	if req.Limit > 0 {
		limit = min(req.Limit, maxResultLimit)
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}

	return &Response{Articles: hits}, nil
}

// rank groups candidates by article. An article scores as its best
// paragraph; articles at or below MinScore are dropped.
func (s *Service) rank(query []float32, candidates []database.Candidate) []Hit {
	byArticle := make(map[int64]*Hit)
	paragraphs := make(map[int64][]scoredParagraph)
	var order []int64

	for i := range candidates {
		c := &candidates[i]
		score := embedding.CosineSimilarity(query, c.Embedding.Slice())

		hit, ok := byArticle[c.ArticleID]
		if !ok {
			hit = &Hit{
				ID:       c.ArticleID,
				URL:      c.URL,
				Slug:     c.Slug,
				Question: c.Question,
				Platform: c.Platform,
				Category: c.Category,
			}
			byArticle[c.ArticleID] = hit
			order = append(order, c.ArticleID)
		}
		hit.Score = max(hit.Score, score)
		paragraphs[c.ArticleID] = append(paragraphs[c.ArticleID], scoredParagraph{
			position: c.Position,
			text:     c.Text,
			score:    score,
		})
	}

	hits := make([]Hit, 0, len(order))
	for _, id := range order {
		hit := byArticle[id]
		if hit.Score <= s.cfg.MinScore {
			continue
		}
		hit.Snippets = s.snippets(paragraphs[id])
		hits = append(hits, *hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

func (s *Service) snippets(paras []scoredParagraph) []string {
	sort.SliceStable(paras, func(i, j int) bool {
		if paras[i].score != paras[j].score {
			return paras[i].score > paras[j].score
		}
		return paras[i].position < paras[j].position
	})

	out := make([]string, 0, min(len(paras), s.cfg.MaxSnippets))
	for _, p := range paras {
		if len(out) == s.cfg.MaxSnippets {
			break
		}
		if p.score <= s.cfg.MinScore {
			break
		}
		out = append(out, p.text)
	}
	return out
}

// Article returns the article stored under slug, or domain.ErrNotFound.
func (s *Service) Article(ctx context.Context, slug string) (*domain.Article, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("find article %q: %w", slug, err)
	}
	return article, nil
}
