package platform_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/infrastructure/logger"
	"github.com/jonesrussell/faqhub/internal/config"
	"github.com/jonesrussell/faqhub/internal/domain"
	"github.com/jonesrussell/faqhub/internal/platform"
)

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/rss.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Policy news</title>
<item><title>New cancellation window</title><link>%[1]s/news/cancel</link>
<category>Policy</category>
<description><![CDATA[<p>Cancellations are now free up to 24 hours before.</p><p>Older bookings keep their terms.</p>]]></description></item>
<item><title>Short teaser</title><guid>%[1]s/news/teaser</guid><description></description></item>
<item><title>Duplicate</title><link>%[1]s/news/cancel</link><description>dup</description></item>
</channel></rss>`, srv.URL)
	})
	mux.HandleFunc("/news/teaser", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Teaser headline</h1><article><p>`+
			strings.Repeat("Full article text about vouchers and credits. ", 6)+`</p></article></body></html>`)
	})
	mux.HandleFunc("/bad.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not a feed")
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func feedPlatform(urls ...string) config.PlatformConfig {
	return config.PlatformConfig{
		Name:        "policy-news",
		Kind:        config.KindFeed,
		ContentType: domain.ContentTypeNews,
		Category:    "news",
		Feed:        &config.FeedConfig{URLs: urls},
	}
}

func TestFeedSource_DiscoverAndFetch(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	src, err := platform.NewFeedSource(feedPlatform(srv.URL+"/rss.xml", srv.URL+"/bad.xml"), testFetcher(), logger.NewNop())
	require.NoError(t, err)

	links, err := src.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/news/cancel", srv.URL + "/news/teaser"}, links)

	raw, err := src.Fetch(context.Background(), srv.URL+"/news/cancel")
	require.NoError(t, err)
	assert.Equal(t, "New cancellation window", raw.Title)
	assert.Equal(t, "Policy", raw.Category)
	assert.Equal(t, "feed", raw.Source)
	assert.Equal(t,
		"Cancellations are now free up to 24 hours before.\n\nOlder bookings keep their terms.",
		raw.Body,
	)

	teaser, err := src.Fetch(context.Background(), srv.URL+"/news/teaser")
	require.NoError(t, err)
	assert.Equal(t, "Short teaser", teaser.Title)
	assert.Equal(t, "news", teaser.Category)
	assert.Contains(t, teaser.Body, "Full article text about vouchers")
}

func TestFeedSource_DiscoverAllFeedsFail(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	src, err := platform.NewFeedSource(feedPlatform(srv.URL+"/bad.xml"), testFetcher(), logger.NewNop())
	require.NoError(t, err)

	_, err = src.Discover(context.Background())
	require.Error(t, err)
}
