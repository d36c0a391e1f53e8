package platform_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/platform"
)

const subredditListing = `{"kind":"Listing","data":{"children":[
{"kind":"t3","data":{"id":"a","title":"Refund never arrived","selftext":"I cancelled a tour two weeks ago.","permalink":"/r/travel/comments/a/refund/","subreddit":"travel","score":12,"is_self":true}},
{"kind":"t3","data":{"id":"b","title":"Rules","selftext":"Read the rules.","permalink":"/r/travel/comments/b/rules/","score":50,"is_self":true,"stickied":true}},
{"kind":"t3","data":{"id":"c","title":"Photo","selftext":"","permalink":"/r/travel/comments/c/photo/","score":90,"is_self":false}},
{"kind":"t3","data":{"id":"d","title":"Low score","selftext":"Question here.","permalink":"/r/travel/comments/d/low/","score":0,"is_self":true}},
{"kind":"t3","data":{"id":"e","title":"Gone","selftext":"[removed]","permalink":"/r/travel/comments/e/gone/","score":8,"is_self":true}}
]}}`

const postListing = `[
{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"id":"a","title":"Refund never arrived","selftext":"I cancelled a tour two weeks ago.","subreddit":"travel","score":12,"is_self":true}}]}},
{"kind":"Listing","data":{"children":[
{"kind":"t1","data":{"body":"I am a bot.","author":"AutoModerator","score":1}},
{"kind":"t1","data":{"body":"Refunds take up to 10 business days.","author":"helper","score":7}},
{"kind":"t1","data":{"body":"[deleted]","author":"gone","score":3}},
{"kind":"t1","data":{"body":"Wrong answer.","author":"troll","score":-2}},
{"kind":"t1","data":{"body":"Call your bank after that.","author":"other","score":2}}
]}}]`

func redditServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/r/travel/new.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, subredditListing)
	})
	mux.HandleFunc("/r/broken/new.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/r/travel/comments/a/refund.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "top", r.URL.Query().Get("sort"))
		fmt.Fprint(w, postListing)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func redditPlatform(srv *httptest.Server, subs ...string) config.PlatformConfig {
	return config.PlatformConfig{
		Name:        "reddit-travel",
		Kind:        config.KindReddit,
		ContentType: domain.ContentTypeCommunity,
		Reddit: &config.RedditConfig{
			BaseURL:      srv.URL,
			Subreddits:   subs,
			Sort:         "new",
			Limit:        25,
			MinScore:     1,
			CommentLimit: 5,
		},
	}
}

func TestRedditSource_DiscoverFiltersPosts(t *testing.T) {
	t.Parallel()

	srv := redditServer(t)
	src, err := platform.NewRedditSource(redditPlatform(srv, "travel", "broken"), testFetcher(), logger.NewNop())
	require.NoError(t, err)

	links, err := src.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/r/travel/comments/a/refund/"}, links)
}

func TestRedditSource_DiscoverAllFail(t *testing.T) {
	t.Parallel()

	srv := redditServer(t)
	src, err := platform.NewRedditSource(redditPlatform(srv, "broken"), testFetcher(), logger.NewNop())
	require.NoError(t, err)

	_, err = src.Discover(context.Background())
	require.Error(t, err)
}

func TestRedditSource_FetchJoinsTopComments(t *testing.T) {
	t.Parallel()

	srv := redditServer(t)
	src, err := platform.NewRedditSource(redditPlatform(srv, "travel"), testFetcher(), logger.NewNop())
	require.NoError(t, err)

	raw, err := src.Fetch(context.Background(), srv.URL+"/r/travel/comments/a/refund/")
	require.NoError(t, err)

	assert.Equal(t, "Refund never arrived", raw.Title)
	assert.Equal(t, "travel", raw.Category)
	assert.Equal(t, "reddit", raw.Source)
	assert.Equal(t, domain.ContentTypeCommunity, raw.ContentType)
	assert.Equal(t,
		"I cancelled a tour two weeks ago.\n\nRefunds take up to 10 business days.\n\nCall your bank after that.",
		raw.Body,
	)
}
