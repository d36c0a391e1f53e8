package config

import "github.com/jonesrussell/faqhub/infrastructure/retry"

// Backoff names accepted in crawler.retry.backoff.
const (
	BackoffLinear         = "linear"
	BackoffMultiplicative = "multiplicative"
)

// Policy converts the configured retry settings into a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = r.MaxAttempts
	p.BaseDelay = r.BaseDelay
	p.MaxDelay = r.MaxDelay

	if r.Backoff == BackoffLinear {
		p.Backoff = retry.Linear
	} else if r.Factor > 0 {
		p.Backoff = retry.Multiplicative(r.Factor)
	}

	return p
}
