package embedding

import (
	"context"

	"github.com/jonesrussell/faqhub/infrastructure/circuitbreaker"
)

// guardedEmbedder rejects calls while the breaker is open so an outage of the
// embedding service fails each paragraph immediately.
type guardedEmbedder struct {
	inner   Embedder
	breaker *circuitbreaker.Breaker
}

// WithBreaker wraps embedder so calls pass through breaker.
func WithBreaker(embedder Embedder, breaker *circuitbreaker.Breaker) Embedder {
	return &guardedEmbedder{inner: embedder, breaker: breaker}
}

func (g *guardedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var embedErr error
		vector, embedErr = g.inner.Embed(ctx, text)
		return embedErr
	})
	return vector, err
}
