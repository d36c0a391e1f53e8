// Package embedding splits article content into paragraphs and embeds each one.
package embedding

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/domain"
)

const (
	// DefaultMaxParagraphs bounds embedding calls per article.
	DefaultMaxParagraphs = 8
	// DefaultMinParagraphLength is the length a paragraph must exceed to be embedded.
	DefaultMinParagraphLength = 50
)

// Embedder turns one text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Paragraph is one embedded paragraph.
type Paragraph struct {
	// Position is the paragraph's index among the eligible paragraphs.
	Position  int
	Text      string
	Embedding []float32
}

// Result is the outcome of embedding one article.
type Result struct {
	Paragraphs []Paragraph
	Requested  int
	Failed     int
}

// Status summarizes how much of the article was embedded. Content with no
// eligible paragraph has nothing left to embed and counts as complete.
func (r Result) Status() domain.EmbeddingStatus {
	switch {
	case r.Requested == 0:
		return domain.EmbeddingStatusComplete
	case len(r.Paragraphs) == 0:
		return domain.EmbeddingStatusNone
	case r.Failed > 0:
		return domain.EmbeddingStatusPartial
	default:
		return domain.EmbeddingStatusComplete
	}
}

// Generator embeds article paragraphs with per-paragraph failure isolation.
type Generator struct {
	embedder      Embedder
	maxParagraphs int
	minLength     int
	logger        logger.Logger
}

// NewGenerator creates a Generator. Zero limits fall back to defaults.
func NewGenerator(embedder Embedder, maxParagraphs, minLength int, log logger.Logger) *Generator {
	if maxParagraphs <= 0 {
		maxParagraphs = DefaultMaxParagraphs
	}
	if minLength <= 0 {
		minLength = DefaultMinParagraphLength
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Generator{embedder: embedder, maxParagraphs: maxParagraphs, minLength: minLength, logger: log}
}

// Split returns the paragraphs of content that would be embedded.
func (g *Generator) Split(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var out []string
	for _, block := range splitBlankLines(content) {
		p := strings.Join(strings.Fields(block), " ")
		if utf8.RuneCountInString(p) <= g.minLength {
			continue
		}
		out = append(out, p)
		if len(out) == g.maxParagraphs {
			break
		}
	}
	return out
}

// Embed requests one vector per eligible paragraph. A failed paragraph is
// logged and skipped; if the service is entirely unavailable the result is
// empty rather than an error. Embed stops early when ctx is cancelled.
func (g *Generator) Embed(ctx context.Context, content string) Result {
	paragraphs := g.Split(content)
	res := Result{Requested: len(paragraphs)}

	for i, text := range paragraphs {
		if ctx.Err() != nil {
			res.Failed += len(paragraphs) - i
			break
		}

		vec, err := g.embedder.Embed(ctx, text)
		if err != nil {
			res.Failed++
			g.logger.Warn("Paragraph embedding failed",
				logger.Int("position", i),
				logger.Int("length", len(text)),
				logger.Error(err),
			)
			continue
		}

		res.Paragraphs = append(res.Paragraphs, Paragraph{Position: i, Text: text, Embedding: vec})
	}

	return res
}

// splitBlankLines splits on lines that contain only whitespace.
func splitBlankLines(content string) []string {
	var blocks []string
	var current []string

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = current[:0]
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	return blocks
}
