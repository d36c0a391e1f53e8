// Package crawler drives platform sources through the ingestion pipeline.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/ingest"
	"github.com/jonesrussell/faqhub/internal/metrics"
	"github.com/jonesrussell/faqhub/internal/platform"
)

const (
	stageDiscover = "discover"
	stageFetch    = "fetch"
)

// SourceProvider resolves platform names to sources.
type SourceProvider interface {
	Sources(names ...string) ([]platform.Source, error)
}

// Ingester runs one item through the pipeline.
type Ingester interface {
	Ingest(ctx context.Context, raw *domain.RawContent) (ingest.Result, error)
}

// CrawlStatusStore marks stored articles whose page has gone away.
type CrawlStatusStore interface {
	SetCrawlStatus(ctx context.Context, url string, status domain.CrawlStatus) error
}

// PlatformSummary counts what happened to one platform's items.
type PlatformSummary struct {
	Platform   string
	Discovered int
	Attempted  int
	Outcomes   map[domain.Outcome]int
	Skipped    map[domain.SkipReason]int
	// Err is set when discovery failed and no item was attempted.
	Err error
}

func newPlatformSummary(name string) *PlatformSummary {
	return &PlatformSummary{
		Platform: name,
		Outcomes: make(map[domain.Outcome]int),
		Skipped:  make(map[domain.SkipReason]int),
	}
}

// RunSummary is the result of one crawl run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Platforms  []*PlatformSummary
}

// Total sums one outcome over every platform.
func (s *RunSummary) Total(outcome domain.Outcome) int {
	n := 0
	for _, p := range s.Platforms {
		n += p.Outcomes[outcome]
	}
	return n
}

// Runner crawls sources sequentially, one item at a time.
type Runner struct {
	sources  SourceProvider
	pipeline Ingester
	status   CrawlStatusStore
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewRunner creates a Runner. status and m may be nil.
func NewRunner(sources SourceProvider, pipeline Ingester, status CrawlStatusStore, m *metrics.Metrics, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		sources:  sources,
		pipeline: pipeline,
		status:   status,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// Run crawls the named platforms, or every active platform when none are
// named. Item failures are counted and the run continues; cancellation stops
// the run between items and returns the partial summary with ctx.Err().
func (r *Runner) Run(ctx context.Context, platforms ...string) (*RunSummary, error) {
	sources, err := r.sources.Sources(platforms...)
	if err != nil {
		return nil, fmt.Errorf("resolve platforms: %w", err)
	}

	summary := &RunSummary{RunID: uuid.New().String(), StartedAt: r.now()}
	log := r.logger.With(logger.String("run_id", summary.RunID))
	log.Info("Crawl run started", logger.Int("platforms", len(sources)))

	var runErr error
	for _, src := range sources {
		ps := newPlatformSummary(src.Platform())
		summary.Platforms = append(summary.Platforms, ps)

		if runErr = r.crawlSource(ctx, src, ps, log); runErr != nil {
			break
		}
	}

	summary.FinishedAt = r.now()
	r.metrics.RecordCrawlRun(runErr == nil)

	log.Info("Crawl run finished",
		logger.Int("created", summary.Total(domain.OutcomeCreated)),
		logger.Int("updated", summary.Total(domain.OutcomeUpdated)),
		logger.Int("duplicate", summary.Total(domain.OutcomeDuplicate)),
		logger.Int("skipped", summary.Total(domain.OutcomeSkipped)),
		logger.Int("failed", summary.Total(domain.OutcomeFailed)),
		logger.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, runErr
}

// crawlSource returns an error only when ctx is done.
func (r *Runner) crawlSource(ctx context.Context, src platform.Source, ps *PlatformSummary, runLog logger.Logger) error {
	log := runLog.With(logger.String("platform", src.Platform()))

	urls, err := src.Discover(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		log.Error("Discovery failed", logger.Error(err))
		r.metrics.RecordFetchFailure(src.Platform(), stageDiscover)
		ps.Err = err
		return nil
	}

	ps.Discovered = len(urls)
	if limited, ok := src.(platform.Limited); ok && limited.MaxArticles() > 0 && len(urls) > limited.MaxArticles() {
		urls = urls[:limited.MaxArticles()]
	}

	for _, u := range urls {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		ps.Attempted++
		r.crawlItem(ctx, src, u, ps, log)
	}

	log.Info("Platform crawled",
		logger.Int("discovered", ps.Discovered),
		logger.Int("attempted", ps.Attempted),
		logger.Int("failed", ps.Outcomes[domain.OutcomeFailed]),
	)
	return nil
}

func (r *Runner) crawlItem(ctx context.Context, src platform.Source, url string, ps *PlatformSummary, log logger.Logger) {
	raw, err := src.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn("Fetch failed", logger.String("url", url), logger.Error(err))
		r.metrics.RecordFetchFailure(src.Platform(), stageFetch)
		ps.Outcomes[domain.OutcomeFailed]++
		r.markGone(ctx, url, err, log)
		return
	}
	if ctx.Err() != nil {
		return
	}

	res, err := r.pipeline.Ingest(ctx, raw)
	if err != nil {
		log.Error("Ingest failed", logger.String("url", url), logger.Error(err))
		ps.Outcomes[domain.OutcomeFailed]++
		return
	}

	ps.Outcomes[res.Outcome]++
	if res.Outcome == domain.OutcomeSkipped {
		ps.Skipped[res.SkipReason]++
	}
}

// markGone flags a stored article whose page now returns 404 or 410.
func (r *Runner) markGone(ctx context.Context, url string, fetchErr error, log logger.Logger) {
	if r.status == nil {
		return
	}

	var statusErr *retry.StatusError
	if !errors.As(fetchErr, &statusErr) {
		return
	}
	if statusErr.StatusCode != http.StatusNotFound && statusErr.StatusCode != http.StatusGone {
		return
	}

	if err := r.status.SetCrawlStatus(ctx, url, domain.CrawlStatusError); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn("Failed to mark article crawl status", logger.String("url", url), logger.Error(err))
	}
}
