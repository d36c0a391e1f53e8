package platform

import (
	"context"

	infrahttp "github.com/jonesrussell/faqhub/infrastructure/http"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/ratelimit"
)

// Fetcher performs rate-limited, retried GET requests for one platform.
// Every attempt, including retries, waits on the limiter.
type Fetcher struct {
	client  *infrahttp.Client
	limiter *ratelimit.Limiter
	policy  retry.Policy
	headers map[string]string
}

// NewFetcher creates a Fetcher.
func NewFetcher(client *infrahttp.Client, limiter *ratelimit.Limiter, policy retry.Policy) *Fetcher {
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	return &Fetcher{client: client, limiter: limiter, policy: policy}
}

// WithHeaders returns a copy of f that sends headers on every request.
func (f *Fetcher) WithHeaders(headers map[string]string) *Fetcher {
	cp := *f
	cp.headers = headers
	return &cp
}

// Get fetches url and returns the response body.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return retry.Do(ctx, f.policy, func(ctx context.Context) ([]byte, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return f.client.Get(ctx, url, f.headers)
	})
}

// Wait blocks on the platform's limiter. Used for requests made outside Get.
func (f *Fetcher) Wait(ctx context.Context) error {
	return f.limiter.Wait(ctx)
}

// UserAgent returns the User-Agent sent by the underlying client.
func (f *Fetcher) UserAgent() string {
	return f.client.UserAgent()
}
