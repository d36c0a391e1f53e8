package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
)

const (
	sourceReddit = "reddit"

	kindPost    = "t3"
	kindComment = "t1"
)

// redditListing is the envelope of every Reddit JSON listing.
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []redditThing `json:"children"`
	} `json:"data"`
}

type redditThing struct {
	Kind string     `json:"kind"`
	Data redditPost `json:"data"`
}

// redditPost holds the fields faqhub reads from posts and comments.
type redditPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SelfText  string `json:"selftext"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	IsSelf    bool   `json:"is_self"`
	Stickied  bool   `json:"stickied"`
	Over18    bool   `json:"over_18"`
	Author    string `json:"author"`
}

// RedditSource reads self-posts from subreddits through the public JSON API.
// The post becomes the question and its top comments the answer.
type RedditSource struct {
	platform config.PlatformConfig
	cfg      config.RedditConfig
	fetcher  *Fetcher
	logger   logger.Logger
}

// NewRedditSource creates a Reddit source.
func NewRedditSource(platform config.PlatformConfig, fetcher *Fetcher, log logger.Logger) (*RedditSource, error) {
	if platform.Reddit == nil {
		return nil, fmt.Errorf("platform %s: missing reddit config", platform.Name)
	}

	return &RedditSource{
		platform: platform,
		cfg:      *platform.Reddit,
		fetcher:  fetcher.WithHeaders(map[string]string{"Accept": "application/json"}),
		logger:   log.With(logger.String("platform", platform.Name)),
	}, nil
}

// Platform returns the platform name.
func (s *RedditSource) Platform() string { return s.platform.Name }

// MaxArticles returns the per-run article cap.
func (s *RedditSource) MaxArticles() int { return s.platform.MaxArticles }

// Discover lists recent self-posts of every configured subreddit.
func (s *RedditSource) Discover(ctx context.Context) ([]string, error) {
	var (
		links    []string
		failures []string
	)

	for _, sub := range s.cfg.Subreddits {
		if ctx.Err() != nil {
			return links, ctx.Err()
		}

		posts, err := s.listSubreddit(ctx, sub)
		if err != nil {
			s.logger.Warn("Subreddit listing failed", logger.String("subreddit", sub), logger.Error(err))
			failures = append(failures, sub)
			continue
		}

		for _, p := range posts {
			if s.eligible(p) {
				links = append(links, s.permalinkURL(p.Permalink))
			}
		}
	}

	if len(failures) == len(s.cfg.Subreddits) && len(failures) > 0 {
		return nil, fmt.Errorf("discover %s: every subreddit listing failed: %s",
			s.platform.Name, strings.Join(failures, ", "))
	}

	s.logger.Info("Discovered reddit posts", logger.Int("posts", len(links)))
	return links, nil
}

// Fetch loads a post with its top comments.
func (s *RedditSource) Fetch(ctx context.Context, postURL string) (*domain.RawContent, error) {
	apiURL := strings.TrimSuffix(postURL, "/") + ".json?" + url.Values{
		"limit":    {fmt.Sprint(s.cfg.CommentLimit)},
		"sort":     {"top"},
		"depth":    {"1"},
		"raw_json": {"1"},
	}.Encode()

	body, err := s.fetcher.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("fetch reddit post: %w", err)
	}

	var listings []redditListing
	if unmarshalErr := json.Unmarshal(body, &listings); unmarshalErr != nil {
		return nil, fmt.Errorf("decode reddit post %s: %w", postURL, unmarshalErr)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return nil, fmt.Errorf("reddit post %s: %w", postURL, ErrNoContent)
	}

	post := listings[0].Data.Children[0].Data
	paragraphs := []string{strings.TrimSpace(post.SelfText)}
	if len(listings) > 1 {
		paragraphs = append(paragraphs, s.topComments(listings[1])...)
	}

	category := s.platform.Category
	if category == "" {
		category = post.Subreddit
	}

	return &domain.RawContent{
		URL:          postURL,
		Title:        strings.TrimSpace(post.Title),
		Body:         strings.TrimSpace(strings.Join(paragraphs, "\n\n")),
		Platform:     s.platform.Name,
		Category:     category,
		ContentType:  s.platform.ContentType,
		Source:       sourceReddit,
		Multilingual: s.platform.Multilingual,
	}, nil
}

func (s *RedditSource) listSubreddit(ctx context.Context, sub string) ([]redditPost, error) {
	listURL := fmt.Sprintf("%s/r/%s/%s.json?%s",
		strings.TrimSuffix(s.cfg.BaseURL, "/"), url.PathEscape(sub), url.PathEscape(s.cfg.Sort),
		url.Values{"limit": {fmt.Sprint(s.cfg.Limit)}, "raw_json": {"1"}}.Encode(),
	)

	body, err := s.fetcher.Get(ctx, listURL)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if unmarshalErr := json.Unmarshal(body, &listing); unmarshalErr != nil {
		return nil, fmt.Errorf("decode listing: %w", unmarshalErr)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind == kindPost {
			posts = append(posts, child.Data)
		}
	}
	return posts, nil
}

func (s *RedditSource) eligible(p redditPost) bool {
	return p.IsSelf && !p.Stickied && !p.Over18 &&
		p.Score >= s.cfg.MinScore &&
		!removedText(p.SelfText) && p.Permalink != ""
}

func (s *RedditSource) topComments(listing redditListing) []string {
	var comments []string
	for _, child := range listing.Data.Children {
		if len(comments) == s.cfg.CommentLimit {
			break
		}
		c := child.Data
		if child.Kind != kindComment || c.Stickied || c.Score <= 0 || removedText(c.Body) {
			continue
		}
		if c.Author == "AutoModerator" {
			continue
		}
		comments = append(comments, strings.TrimSpace(c.Body))
	}
	return comments
}

func (s *RedditSource) permalinkURL(permalink string) string {
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + permalink
}

func removedText(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == "[deleted]" || t == "[removed]"
}
