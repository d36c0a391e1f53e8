package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/faqhub/internal/metrics"
)

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a := metrics.New()
	b := metrics.New()

	a.RecordIngest("airbnb", "created", "", time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(a.IngestOutcomes.WithLabelValues("airbnb", "created", "")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.IngestOutcomes.WithLabelValues("airbnb", "created", "")), 0)
}

func TestRecordEmbeddings(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.RecordEmbeddings(4, 1)

	assert.InDelta(t, 4, testutil.ToFloat64(m.EmbeddingRequests.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EmbeddingRequests.WithLabelValues("failure")), 0)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordIngest("p", "failed", "", time.Second)
		m.RecordEmbeddings(1, 1)
		m.RecordParagraphWrite(false)
		m.RecordFetchFailure("p", "fetch")
		m.RecordCrawlRun(true)
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.RecordFetchFailure("reddit", "discover")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `faqhub_fetch_failures_total{platform="reddit",stage="discover"} 1`)
}

func TestGinMiddleware(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/v1/articles/:slug", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/refunds", nil))

	assert.InDelta(t, 1, testutil.ToFloat64(
		m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/articles/:slug", "404"),
	), 0)
}
