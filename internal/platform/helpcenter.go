package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
)

// GetYourGuide is the platform whose listing pagination is behind a feature flag.
const GetYourGuide = "getyourguide"

// sourceHelpCenter is the provenance tag of help-center articles.
const sourceHelpCenter = "helpcenter"

// HelpCenterSource crawls an HTML help center. Listing pages are walked with
// colly to discover article links; articles are extracted with goquery.
type HelpCenterSource struct {
	platform    config.PlatformConfig
	cfg         config.HelpCenterConfig
	fetcher     *Fetcher
	linkPattern *regexp.Regexp
	paginate    bool
	logger      logger.Logger
}

// NewHelpCenterSource creates a help-center source. paginate enables following
// the configured next-page selector on listing pages.
func NewHelpCenterSource(
	platform config.PlatformConfig,
	fetcher *Fetcher,
	paginate bool,
	log logger.Logger,
) (*HelpCenterSource, error) {
	if platform.HelpCenter == nil {
		return nil, fmt.Errorf("platform %s: missing helpcenter config", platform.Name)
	}

	var pattern *regexp.Regexp
	if platform.HelpCenter.LinkPattern != "" {
		compiled, err := regexp.Compile(platform.HelpCenter.LinkPattern)
		if err != nil {
			return nil, fmt.Errorf("platform %s: invalid link_pattern: %w", platform.Name, err)
		}
		pattern = compiled
	}

	return &HelpCenterSource{
		platform:    platform,
		cfg:         *platform.HelpCenter,
		fetcher:     fetcher,
		linkPattern: pattern,
		paginate:    paginate && platform.HelpCenter.NextSelector != "",
		logger:      log.With(logger.String("platform", platform.Name)),
	}, nil
}

// Platform returns the platform name.
func (s *HelpCenterSource) Platform() string { return s.platform.Name }

// MaxArticles returns the per-run article cap.
func (s *HelpCenterSource) MaxArticles() int { return s.platform.MaxArticles }

// Discover walks the start pages, and their pagination when enabled, and
// returns article URLs matching the link pattern in discovery order.
func (s *HelpCenterSource) Discover(ctx context.Context) ([]string, error) {
	var (
		mu      sync.Mutex
		links   []string
		seen    = make(map[string]bool)
		pages   = make(map[string]int)
		visited int
		errs    []error
	)

	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.UserAgent(s.fetcher.UserAgent()),
	}
	if len(s.cfg.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(s.cfg.AllowedDomains...))
	}
	c := colly.NewCollector(opts...)

	c.OnRequest(func(r *colly.Request) {
		if err := s.fetcher.Wait(ctx); err != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		mu.Lock()
		visited++
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		s.logger.Warn("Listing page request failed",
			logger.String("url", r.Request.URL.String()),
			logger.Int("status", r.StatusCode),
			logger.Error(err),
		)
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := canonicalLink(e.Request.AbsoluteURL(e.Attr("href")))
		if link == "" || !s.matches(link) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})

	if s.paginate {
		c.OnHTML(s.cfg.NextSelector, func(e *colly.HTMLElement) {
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next == "" {
				return
			}

			start := e.Request.Ctx.Get("start")
			mu.Lock()
			if pages[start] >= s.cfg.MaxPages {
				mu.Unlock()
				return
			}
			pages[start]++
			mu.Unlock()

			e.Request.Ctx.Put("start", start)
			if err := e.Request.Visit(next); err != nil && !isExpectedVisitError(err) {
				s.logger.Debug("Skipping pagination link", logger.String("url", next), logger.Error(err))
			}
		})
	}

	for _, start := range s.cfg.StartURLs {
		if ctx.Err() != nil {
			return links, ctx.Err()
		}

		reqCtx := colly.NewContext()
		reqCtx.Put("start", start)
		mu.Lock()
		pages[start] = 1
		mu.Unlock()

		if err := c.Request(http.MethodGet, start, nil, reqCtx, nil); err != nil && !isExpectedVisitError(err) {
			s.logger.Debug("Start page failed", logger.String("url", start), logger.Error(err))
		}
	}
	c.Wait()

	if visited == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("discover %s: every listing page failed: %w", s.platform.Name, errors.Join(errs...))
	}
	if ctx.Err() != nil {
		return links, ctx.Err()
	}

	s.logger.Info("Discovered help-center articles",
		logger.Int("links", len(links)),
		logger.Int("listing_pages", visited),
	)
	return links, nil
}

// Fetch downloads one article page and extracts its content.
func (s *HelpCenterSource) Fetch(ctx context.Context, pageURL string) (*domain.RawContent, error) {
	body, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}

	page, err := ExtractPage(body, pageURL, Selectors{
		Title:    s.cfg.TitleSelectors,
		Body:     s.cfg.BodySelectors,
		Exclude:  s.cfg.ExcludeSelectors,
		Category: s.cfg.CategorySelector,
	}, s.cfg.MinBodyLength)
	if err != nil {
		return nil, fmt.Errorf("extract article %s: %w", pageURL, err)
	}
	if page.Body == "" {
		return nil, fmt.Errorf("extract article %s: %w", pageURL, ErrNoContent)
	}

	category := page.Category
	if category == "" {
		category = s.platform.Category
	}

	return &domain.RawContent{
		URL:          pageURL,
		Title:        page.Title,
		Body:         page.Body,
		Platform:     s.platform.Name,
		Category:     category,
		ContentType:  s.platform.ContentType,
		Source:       sourceHelpCenter,
		Multilingual: s.platform.Multilingual,
	}, nil
}

func (s *HelpCenterSource) matches(link string) bool {
	if s.linkPattern == nil {
		return false
	}
	if !s.linkPattern.MatchString(link) {
		return false
	}
	if len(s.cfg.AllowedDomains) == 0 {
		return true
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, d := range s.cfg.AllowedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// isExpectedVisitError reports colly refusals that are not failures.
func isExpectedVisitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already visited") ||
		strings.Contains(msg, "forbidden domain") ||
		strings.Contains(msg, "max depth")
}

// canonicalLink strips the fragment so anchors on one article collapse to one URL.
func canonicalLink(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
