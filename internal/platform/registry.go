package platform

import (
	"fmt"
	"sort"
	"strings"

	infrahttp "github.com/jonesrussell/faqhub/infrastructure/http"
	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/infrastructure/retry"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/ratelimit"
)

// Viator is the platform gated by enable_viator_scraping.
const Viator = "viator"

// Status reports whether a configured platform will be crawled and why not.
type Status struct {
	Name        string
	Kind        config.SourceKind
	ContentType domain.ContentType
	Enabled     bool
	Reason      string
	RateLimit   float64
	MaxArticles int
}

// Statuses applies config and feature flags to every configured platform.
func Statuses(cfg *config.Config) []Status {
	out := make([]Status, 0, len(cfg.Platforms))
	for i := range cfg.Platforms {
		p := &cfg.Platforms[i]
		enabled, reason := isActive(p, cfg.Features)
		out = append(out, Status{
			Name:        p.Name,
			Kind:        p.Kind,
			ContentType: p.ContentType,
			Enabled:     enabled,
			Reason:      reason,
			RateLimit:   p.RatePerSecond,
			MaxArticles: p.MaxArticles,
		})
	}
	return out
}

func isActive(p *config.PlatformConfig, flags config.FeatureFlags) (bool, string) {
	switch {
	case !p.IsEnabled():
		return false, "disabled in config"
	case strings.EqualFold(p.Name, Viator) && !flags.EnableViatorScraping:
		return false, "enable_viator_scraping is off"
	case p.ContentType == domain.ContentTypeCommunity && !flags.EnableCommunityCrawling:
		return false, "enable_community_crawling is off"
	default:
		return true, ""
	}
}

// Registry holds the sources that are active under the current config.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry builds one source per active platform. Each source gets its
// own rate limiter; all share client and policy.
func NewRegistry(cfg *config.Config, client *infrahttp.Client, policy retry.Policy, log logger.Logger) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source)}

	for i := range cfg.Platforms {
		p := cfg.Platforms[i]
		if active, reason := isActive(&p, cfg.Features); !active {
			log.Info("Platform not active", logger.String("platform", p.Name), logger.String("reason", reason))
			continue
		}

		limiter := ratelimit.New(p.RatePerSecond, p.Burst, ratelimit.WithLogger(log))
		fetcher := NewFetcher(client, limiter, policy)

		src, err := newSource(p, fetcher, cfg.Features, log)
		if err != nil {
			return nil, err
		}

		r.Register(src)
	}

	return r, nil
}

func newSource(p config.PlatformConfig, fetcher *Fetcher, flags config.FeatureFlags, log logger.Logger) (Source, error) {
	switch p.Kind {
	case config.KindHelpCenter:
		paginate := !strings.EqualFold(p.Name, GetYourGuide) || flags.EnableGetYourGuidePagination
		return NewHelpCenterSource(p, fetcher, paginate, log)
	case config.KindReddit:
		return NewRedditSource(p, fetcher, log)
	case config.KindFeed:
		return NewFeedSource(p, fetcher, log)
	default:
		return nil, fmt.Errorf("platform %s: unknown kind %q", p.Name, p.Kind)
	}
}

// Register adds src, replacing any source with the same platform name.
func (r *Registry) Register(src Source) {
	if _, exists := r.sources[src.Platform()]; !exists {
		r.order = append(r.order, src.Platform())
	}
	r.sources[src.Platform()] = src
}

// Names returns the active platform names in config order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Sources returns the named sources, or every active source when names is
// empty. Unknown or inactive names are an error.
func (r *Registry) Sources(names ...string) ([]Source, error) {
	if len(names) == 0 {
		out := make([]Source, 0, len(r.order))
		for _, name := range r.order {
			out = append(out, r.sources[name])
		}
		return out, nil
	}

	out := make([]Source, 0, len(names))
	var unknown []string
	for _, name := range names {
		src, ok := r.sources[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, src)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown or inactive platforms: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
