package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
)

const (
	sourceFeed = "feed"
	httpPrefix = "http"

	// feedMinBodyLength triggers the readability fallback on fetched feed articles.
	feedMinBodyLength = 200
)

// feedItem is what Discover remembers about an entry for Fetch.
type feedItem struct {
	title    string
	body     string
	category string
}

// FeedSource reads RSS and Atom feeds. Entries are used as-is, or their
// links are fetched and extracted when FetchArticles is set.
type FeedSource struct {
	platform config.PlatformConfig
	cfg      config.FeedConfig
	fetcher  *Fetcher
	logger   logger.Logger

	mu    sync.Mutex
	items map[string]feedItem
}

// NewFeedSource creates a feed source.
func NewFeedSource(platform config.PlatformConfig, fetcher *Fetcher, log logger.Logger) (*FeedSource, error) {
	if platform.Feed == nil {
		return nil, fmt.Errorf("platform %s: missing feed config", platform.Name)
	}

	return &FeedSource{
		platform: platform,
		cfg:      *platform.Feed,
		fetcher:  fetcher,
		logger:   log.With(logger.String("platform", platform.Name)),
		items:    make(map[string]feedItem),
	}, nil
}

// Platform returns the platform name.
func (s *FeedSource) Platform() string { return s.platform.Name }

// MaxArticles returns the per-run article cap.
func (s *FeedSource) MaxArticles() int { return s.platform.MaxArticles }

// Discover fetches every feed and returns the entry links.
func (s *FeedSource) Discover(ctx context.Context) ([]string, error) {
	var (
		links []string
		errs  []error
	)
	seen := make(map[string]bool)
	parser := gofeed.NewParser()

	for _, feedURL := range s.cfg.URLs {
		if ctx.Err() != nil {
			return links, ctx.Err()
		}

		body, err := s.fetcher.Get(ctx, feedURL)
		if err != nil {
			s.logger.Warn("Feed fetch failed", logger.String("feed", feedURL), logger.Error(err))
			errs = append(errs, err)
			continue
		}

		parsed, err := parser.ParseString(string(body))
		if err != nil {
			s.logger.Warn("Feed parse failed", logger.String("feed", feedURL), logger.Error(err))
			errs = append(errs, fmt.Errorf("parse feed %s: %w", feedURL, err))
			continue
		}

		for _, entry := range parsed.Items {
			link := extractLink(entry)
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			links = append(links, link)
			s.remember(link, entry)
		}
	}

	if len(errs) == len(s.cfg.URLs) && len(errs) > 0 {
		return nil, fmt.Errorf("discover %s: every feed failed: %w", s.platform.Name, errors.Join(errs...))
	}

	s.logger.Info("Discovered feed entries", logger.Int("entries", len(links)))
	return links, nil
}

// Fetch returns the content of one entry.
func (s *FeedSource) Fetch(ctx context.Context, link string) (*domain.RawContent, error) {
	s.mu.Lock()
	item, known := s.items[link]
	s.mu.Unlock()

	if s.cfg.FetchArticles || !known || item.body == "" {
		page, err := s.fetchPage(ctx, link)
		if err != nil {
			return nil, err
		}
		if item.title == "" {
			item.title = page.Title
		}
		item.body = page.Body
	}

	if item.body == "" {
		return nil, fmt.Errorf("feed entry %s: %w", link, ErrNoContent)
	}

	category := item.category
	if category == "" {
		category = s.platform.Category
	}

	return &domain.RawContent{
		URL:          link,
		Title:        item.title,
		Body:         item.body,
		Platform:     s.platform.Name,
		Category:     category,
		ContentType:  s.platform.ContentType,
		Source:       sourceFeed,
		Multilingual: s.platform.Multilingual,
	}, nil
}

func (s *FeedSource) fetchPage(ctx context.Context, link string) (*Page, error) {
	body, err := s.fetcher.Get(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("fetch feed article: %w", err)
	}

	page, err := ExtractPage(body, link, Selectors{Body: s.cfg.BodySelectors}, feedMinBodyLength)
	if err != nil {
		return nil, fmt.Errorf("extract feed article %s: %w", link, err)
	}
	return page, nil
}

func (s *FeedSource) remember(link string, entry *gofeed.Item) {
	content := entry.Content
	if content == "" {
		content = entry.Description
	}

	var category string
	if len(entry.Categories) > 0 {
		category = strings.TrimSpace(entry.Categories[0])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[link] = feedItem{
		title:    strings.TrimSpace(entry.Title),
		body:     HTMLToText(content),
		category: category,
	}
}

// extractLink returns the best available URL from a feed entry.
// It prefers the explicit Link field, falling back to the GUID if it
// looks like an HTTP URL.
func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}

	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}

	return ""
}
