package embedding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/faqhub/internal/embedding"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "scaled", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, embedding.CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	t.Parallel()

	a := []float32{0.3, -0.2, 0.9}
	b := []float32{0.1, 0.5, 0.4}
	assert.InDelta(t, embedding.CosineSimilarity(a, b), embedding.CosineSimilarity(b, a), 1e-9)
}
