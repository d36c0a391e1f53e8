package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jonesrussell/faqhub/infrastructure/retry"
)

// ErrEmptyEmbedding is returned when the service answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding service returned no data")

// OpenAIConfig configures the OpenAI embedder.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single request; zero leaves the client default.
	Timeout time.Duration
}

// OpenAIEmbedder implements Embedder with the OpenAI embeddings API. Every
// call is retried on rate limiting, 5xx responses and network failures.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	policy retry.Policy
}

// NewOpenAIEmbedder creates an OpenAIEmbedder.
func NewOpenAIEmbedder(cfg OpenAIConfig, policy retry.Policy) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	policy.IsRetryable = isRetryableOpenAIError
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		policy: policy,
	}
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return retry.Do(ctx, e.policy, func(ctx context.Context) ([]float32, error) {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: e.model,
		})
		if err != nil {
			return nil, fmt.Errorf("create embedding: %w", err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, ErrEmptyEmbedding
		}
		return resp.Data[0].Embedding, nil
	})
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retry.RetryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retry.RetryableStatus(reqErr.HTTPStatusCode)
	}

	return retry.DefaultIsRetryable(err)
}
