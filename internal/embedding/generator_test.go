package embedding_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/embedding"
)

var errEmbed = errors.New("embedding service unavailable")

// fakeEmbedder returns a vector derived from the call index and fails on selected calls.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
	texts  []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++
	f.texts = append(f.texts, text)
	if f.failOn[idx] {
		return nil, errEmbed
	}
	return []float32{float32(idx), 1, 0}, nil
}

func paragraph(n int) string {
	return fmt.Sprintf("Paragraph %d explains how refunds are handled after a booking is cancelled.", n)
}

func articleBody(n int) string {
	parts := make([]string, 0, n)
	for i := range n {
		parts = append(parts, paragraph(i))
	}
	return strings.Join(parts, "\n\n")
}

func TestGenerator_Split(t *testing.T) {
	t.Parallel()

	gen := embedding.NewGenerator(&fakeEmbedder{}, 3, 50, nil)

	content := "short line\n\n" + paragraph(1) + "\n  \n" + paragraph(2) + "\r\n\r\n" + paragraph(3) + "\n\n" + paragraph(4)
	got := gen.Split(content)

	require.Len(t, got, 3)
	assert.Equal(t, paragraph(1), got[0])
	assert.Equal(t, paragraph(3), got[2])
}

func TestGenerator_Split_CollapsesInnerWhitespace(t *testing.T) {
	t.Parallel()

	gen := embedding.NewGenerator(&fakeEmbedder{}, 0, 10, nil)
	got := gen.Split("first line of the block\nsecond   line of the block")

	require.Len(t, got, 1)
	assert.Equal(t, "first line of the block second line of the block", got[0])
}

func TestGenerator_Embed_AllSucceed(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(context.Background(), articleBody(3))

	assert.Equal(t, 3, res.Requested)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Paragraphs, 3)
	assert.Equal(t, domain.EmbeddingStatusComplete, res.Status())
	for i, p := range res.Paragraphs {
		assert.Equal(t, i, p.Position)
	}
}

func TestGenerator_Embed_IsolatesFailures(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{failOn: map[int]bool{1: true}}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(context.Background(), articleBody(5))

	assert.Equal(t, 5, res.Requested)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Paragraphs, 4)
	assert.Equal(t, domain.EmbeddingStatusPartial, res.Status())

	positions := make([]int, 0, len(res.Paragraphs))
	for _, p := range res.Paragraphs {
		positions = append(positions, p.Position)
	}
	assert.Equal(t, []int{0, 2, 3, 4}, positions)
}

func TestGenerator_Embed_ServiceDown(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{failOn: map[int]bool{0: true, 1: true}}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(context.Background(), articleBody(2))

	assert.Empty(t, res.Paragraphs)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, domain.EmbeddingStatusNone, res.Status())
}

func TestGenerator_Embed_CapsParagraphs(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(context.Background(), articleBody(12))

	assert.Equal(t, 8, res.Requested)
	assert.Equal(t, 8, fake.calls)
	assert.Len(t, res.Paragraphs, 8)
}

func TestGenerator_Embed_NoEligibleParagraphs(t *testing.T) {
	t.Parallel()

	fake := &fakeEmbedder{}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(context.Background(), "too short\n\nalso short")

	assert.Zero(t, fake.calls)
	assert.Zero(t, res.Requested)
	assert.Empty(t, res.Paragraphs)
	assert.Equal(t, domain.EmbeddingStatusComplete, res.Status(), "nothing to embed is not reselected by reembed")
}

func TestGenerator_Embed_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeEmbedder{}
	gen := embedding.NewGenerator(fake, 8, 50, nil)

	res := gen.Embed(ctx, articleBody(3))

	assert.Zero(t, fake.calls)
	assert.Equal(t, 3, res.Failed)
}
