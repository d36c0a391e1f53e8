package config

import (
	"fmt"

	infraconfig "github.com/jonesrussell/faqhub/infrastructure/config"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("database.host", c.Database.Host); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("database.database", c.Database.Database); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Client.Address); err != nil {
			return err
		}
	}
	if err := infraconfig.ValidateRange(
		"pipeline.language.reliability_threshold", c.Pipeline.Language.ReliabilityThreshold, 0, 1,
	); err != nil {
		return err
	}
	if err := infraconfig.ValidateRange("search.min_score", c.Search.MinScore, -1, 1); err != nil {
		return err
	}
	if c.Crawler.Retry.Backoff != BackoffLinear && c.Crawler.Retry.Backoff != BackoffMultiplicative {
		return &infraconfig.ValidationError{Field: "crawler.retry.backoff", Message: "must be linear or multiplicative"}
	}

	return c.validatePlatforms()
}

func (c *Config) validatePlatforms() error {
	seen := make(map[string]bool, len(c.Platforms))

	for i := range c.Platforms {
		p := &c.Platforms[i]
		field := fmt.Sprintf("platforms[%d]", i)

		if p.Name == "" {
			return &infraconfig.ValidationError{Field: field + ".name", Message: "is required"}
		}
		if seen[p.Name] {
			return &infraconfig.ValidationError{Field: field + ".name", Message: "duplicate platform " + p.Name}
		}
		seen[p.Name] = true

		if !p.ContentType.Valid() {
			return &infraconfig.ValidationError{Field: field + ".content_type", Message: "unknown content type"}
		}
		if err := p.validateVariant(field); err != nil {
			return err
		}
	}

	return nil
}

func (p *PlatformConfig) validateVariant(field string) error {
	switch p.Kind {
	case KindHelpCenter:
		if p.HelpCenter == nil || len(p.HelpCenter.StartURLs) == 0 {
			return &infraconfig.ValidationError{Field: field + ".helpcenter.start_urls", Message: "is required"}
		}
	case KindReddit:
		if p.Reddit == nil || len(p.Reddit.Subreddits) == 0 {
			return &infraconfig.ValidationError{Field: field + ".reddit.subreddits", Message: "is required"}
		}
	case KindFeed:
		if p.Feed == nil || len(p.Feed.URLs) == 0 {
			return &infraconfig.ValidationError{Field: field + ".feed.urls", Message: "is required"}
		}
	default:
		return &infraconfig.ValidationError{
			Field:   field + ".kind",
			Message: "must be one of: helpcenter, reddit, feed",
		}
	}
	return nil
}
