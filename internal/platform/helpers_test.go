package platform_test

import (
	"context"
	"time"

	infrahttp "github.com/jonesrussell/faqhub/infrastructure/http"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/platform"
	"github.com/jonesrussell/faqhub/internal/ratelimit"
)

func testPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.BaseDelay = time.Millisecond
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func testFetcher() *platform.Fetcher {
	client := infrahttp.NewClient(infrahttp.ClientConfig{Timeout: 5 * time.Second, UserAgent: "faqhub-test"})
	return platform.NewFetcher(client, ratelimit.Unlimited(), testPolicy())
}
