package config

import (
	"time"

	"github.com/jonesrussell/faqhub/internal/domain"
)

// SourceKind selects which PlatformConfig variant is populated.
type SourceKind string

const (
	// KindHelpCenter crawls HTML help-center pages with CSS selectors.
	KindHelpCenter SourceKind = "helpcenter"
	// KindReddit reads subreddit listings through the public JSON API.
	KindReddit SourceKind = "reddit"
	// KindFeed reads RSS or Atom feeds.
	KindFeed SourceKind = "feed"
)

const (
	defaultRedditBaseURL      = "https://www.reddit.com"
	defaultRedditSort         = "new"
	defaultRedditLimit        = 25
	defaultRedditCommentLimit = 5
	defaultHelpCenterMaxPages = 5
	defaultMinBodyLength      = 200
)

// PlatformConfig describes one configured source. Exactly one of HelpCenter,
// Reddit or Feed is set, matching Kind.
type PlatformConfig struct {
	Name         string             `yaml:"name"`
	Kind         SourceKind         `yaml:"kind"`
	Category     string             `yaml:"category"`
	ContentType  domain.ContentType `yaml:"content_type"`
	Multilingual bool               `yaml:"multilingual"`
	Enabled      *bool              `yaml:"enabled"`
	// RatePerSecond is the steady request rate; Burst the bucket size.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	MaxArticles   int     `yaml:"max_articles"`

	HelpCenter *HelpCenterConfig `yaml:"helpcenter"`
	Reddit     *RedditConfig     `yaml:"reddit"`
	Feed       *FeedConfig       `yaml:"feed"`
}

// HelpCenterConfig holds selector lists for an HTML help center.
type HelpCenterConfig struct {
	StartURLs        []string `yaml:"start_urls"`
	AllowedDomains   []string `yaml:"allowed_domains"`
	LinkPattern      string   `yaml:"link_pattern"`
	TitleSelectors   []string `yaml:"title_selectors"`
	BodySelectors    []string `yaml:"body_selectors"`
	ExcludeSelectors []string `yaml:"exclude_selectors"`
	CategorySelector string   `yaml:"category_selector"`
	// NextSelector follows listing pagination when pagination is enabled for the platform.
	NextSelector  string `yaml:"next_selector"`
	MaxPages      int    `yaml:"max_pages"`
	MinBodyLength int    `yaml:"min_body_length"`
}

// RedditConfig selects subreddits to read.
type RedditConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Subreddits   []string `yaml:"subreddits"`
	Sort         string   `yaml:"sort"`
	Limit        int      `yaml:"limit"`
	MinScore     int      `yaml:"min_score"`
	CommentLimit int      `yaml:"comment_limit"`
}

// FeedConfig lists RSS/Atom feeds. When FetchArticles is set each item link is
// fetched and extracted with BodySelectors instead of using the item description.
type FeedConfig struct {
	URLs          []string `yaml:"urls"`
	FetchArticles bool     `yaml:"fetch_articles"`
	BodySelectors []string `yaml:"body_selectors"`
}

// IsEnabled reports whether the platform is enabled in config. Feature flags are applied separately.
func (p *PlatformConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// MinInterval returns the spacing between requests implied by RatePerSecond.
func (p *PlatformConfig) MinInterval() time.Duration {
	if p.RatePerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / p.RatePerSecond)
}

func (p *PlatformConfig) setDefaults() {
	if p.RatePerSecond == 0 {
		p.RatePerSecond = defaultPlatformRatePerSecond
	}
	if p.Burst == 0 {
		p.Burst = defaultPlatformBurst
	}
	if p.MaxArticles == 0 {
		p.MaxArticles = defaultPlatformMaxArticles
	}

	switch p.Kind {
	case KindHelpCenter:
		if p.ContentType == "" {
			p.ContentType = domain.ContentTypeOfficial
		}
		if p.HelpCenter != nil {
			if p.HelpCenter.MaxPages == 0 {
				p.HelpCenter.MaxPages = defaultHelpCenterMaxPages
			}
			if p.HelpCenter.MinBodyLength == 0 {
				p.HelpCenter.MinBodyLength = defaultMinBodyLength
			}
		}
	case KindReddit:
		if p.ContentType == "" {
			p.ContentType = domain.ContentTypeCommunity
		}
		if p.Reddit != nil {
			if p.Reddit.BaseURL == "" {
				p.Reddit.BaseURL = defaultRedditBaseURL
			}
			if p.Reddit.Sort == "" {
				p.Reddit.Sort = defaultRedditSort
			}
			if p.Reddit.Limit == 0 {
				p.Reddit.Limit = defaultRedditLimit
			}
			if p.Reddit.CommentLimit == 0 {
				p.Reddit.CommentLimit = defaultRedditCommentLimit
			}
		}
	case KindFeed:
		if p.ContentType == "" {
			p.ContentType = domain.ContentTypeNews
		}
	}
}
