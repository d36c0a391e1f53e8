package crawler_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/crawler"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/ingest"
	"github.com/jonesrussell/faqhub/internal/metrics"
	"github.com/jonesrussell/faqhub/internal/platform"
)

type fakeSource struct {
	name        string
	urls        []string
	discoverErr error
	fetchErrs   map[string]error
	maxArticles int
	fetched     []string
	onFetch     func(url string)
}

func (s *fakeSource) Platform() string { return s.name }
func (s *fakeSource) MaxArticles() int { return s.maxArticles }

func (s *fakeSource) Discover(context.Context) ([]string, error) {
	return s.urls, s.discoverErr
}

func (s *fakeSource) Fetch(_ context.Context, url string) (*domain.RawContent, error) {
	s.fetched = append(s.fetched, url)
	if s.onFetch != nil {
		s.onFetch(url)
	}
	if err := s.fetchErrs[url]; err != nil {
		return nil, err
	}
	return &domain.RawContent{URL: url, Platform: s.name, Body: "body of " + url}, nil
}

type fakeProvider struct {
	sources []platform.Source
}

func (p *fakeProvider) Sources(names ...string) ([]platform.Source, error) {
	if len(names) == 0 {
		return p.sources, nil
	}
	var out []platform.Source
	for _, n := range names {
		found := false
		for _, s := range p.sources {
			if s.Platform() == n {
				out = append(out, s)
				found = true
			}
		}
		if !found {
			return nil, errors.New("unknown platform " + n)
		}
	}
	return out, nil
}

type scriptedIngester struct {
	results map[string]ingest.Result
	errs    map[string]error
}

func (i *scriptedIngester) Ingest(_ context.Context, raw *domain.RawContent) (ingest.Result, error) {
	if err := i.errs[raw.URL]; err != nil {
		return ingest.Result{Outcome: domain.OutcomeFailed}, err
	}
	if res, ok := i.results[raw.URL]; ok {
		return res, nil
	}
	return ingest.Result{Outcome: domain.OutcomeCreated}, nil
}

type statusRecorder struct {
	mu     sync.Mutex
	marked []string
}

func (s *statusRecorder) SetCrawlStatus(_ context.Context, url string, status domain.CrawlStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == domain.CrawlStatusError {
		s.marked = append(s.marked, url)
	}
	return nil
}

func TestRunner_CountsOutcomesAndContinuesOnFailure(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		name: "acme",
		urls: []string{"u1", "u2", "u3", "u4", "u5", "u6"},
		fetchErrs: map[string]error{
			"u2": errors.New("connection reset"),
			"u5": &retry.StatusError{URL: "u5", StatusCode: http.StatusNotFound},
		},
	}
	ing := &scriptedIngester{
		results: map[string]ingest.Result{
			"u3": {Outcome: domain.OutcomeSkipped, SkipReason: domain.SkipTooShort},
			"u6": {Outcome: domain.OutcomeDuplicate},
		},
		errs: map[string]error{"u4": errors.New("db down")},
	}
	status := &statusRecorder{}

	runner := crawler.NewRunner(&fakeProvider{sources: []platform.Source{src}}, ing, status, metrics.New(), logger.NewNop())
	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Platforms, 1)
	ps := summary.Platforms[0]

	assert.Equal(t, 6, ps.Discovered)
	assert.Equal(t, 6, ps.Attempted)
	assert.Equal(t, 1, ps.Outcomes[domain.OutcomeCreated])
	assert.Equal(t, 1, ps.Outcomes[domain.OutcomeDuplicate])
	assert.Equal(t, 1, ps.Outcomes[domain.OutcomeSkipped])
	assert.Equal(t, 3, ps.Outcomes[domain.OutcomeFailed])
	assert.Equal(t, 1, ps.Skipped[domain.SkipTooShort])
	assert.Equal(t, []string{"u5"}, status.marked)
	assert.Equal(t, 3, summary.Total(domain.OutcomeFailed))
}

func TestRunner_CapsAtMaxArticles(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "acme", urls: []string{"a", "b", "c", "d"}, maxArticles: 2}
	runner := crawler.NewRunner(&fakeProvider{sources: []platform.Source{src}}, &scriptedIngester{}, nil, nil, nil)

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, src.fetched)
	assert.Equal(t, 4, summary.Platforms[0].Discovered)
	assert.Equal(t, 2, summary.Platforms[0].Attempted)
}

func TestRunner_DiscoveryFailureDoesNotStopRun(t *testing.T) {
	t.Parallel()

	broken := &fakeSource{name: "broken", discoverErr: errors.New("every listing page failed")}
	healthy := &fakeSource{name: "healthy", urls: []string{"x"}}
	provider := &fakeProvider{sources: []platform.Source{broken, healthy}}

	summary, err := crawler.NewRunner(provider, &scriptedIngester{}, nil, nil, logger.NewNop()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Platforms, 2)
	require.Error(t, summary.Platforms[0].Err)
	assert.Equal(t, 1, summary.Platforms[1].Outcomes[domain.OutcomeCreated])
}

func TestRunner_SelectsNamedPlatforms(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a", urls: []string{"1"}}
	b := &fakeSource{name: "b", urls: []string{"2"}}
	provider := &fakeProvider{sources: []platform.Source{a, b}}
	runner := crawler.NewRunner(provider, &scriptedIngester{}, nil, nil, logger.NewNop())

	summary, err := runner.Run(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, summary.Platforms, 1)
	assert.Equal(t, "b", summary.Platforms[0].Platform)
	assert.Empty(t, a.fetched)

	_, err = runner.Run(context.Background(), "missing")
	require.Error(t, err)
}

func TestRunner_StopsBetweenItemsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{name: "acme", urls: []string{"a", "b", "c"}}
	src.onFetch = func(url string) {
		if url == "b" {
			cancel()
		}
	}
	runner := crawler.NewRunner(&fakeProvider{sources: []platform.Source{src}}, &scriptedIngester{}, nil, nil, logger.NewNop())

	summary, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, []string{"a", "b"}, src.fetched)
	assert.Equal(t, 1, summary.Platforms[0].Outcomes[domain.OutcomeCreated])
}
