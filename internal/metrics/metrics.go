// Package metrics exports Prometheus metrics for ingestion, crawling and search.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "faqhub"

// Metrics holds all faqhub Prometheus metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	IngestOutcomes    *prometheus.CounterVec
	IngestDuration    *prometheus.HistogramVec
	EmbeddingRequests *prometheus.CounterVec
	ParagraphWrites   *prometheus.CounterVec

	// Crawling
	FetchFailures *prometheus.CounterVec
	CrawlRuns     *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.IngestOutcomes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_outcomes_total",
		Help:      "Items processed by the ingestion pipeline, by outcome and skip reason",
	}, []string{"platform", "outcome", "reason"})

	m.IngestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_duration_seconds",
		Help:      "Time to ingest a single item",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"platform"})

	m.EmbeddingRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_requests_total",
		Help:      "Paragraph embedding requests, by result",
	}, []string{"result"})

	m.ParagraphWrites = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "paragraph_writes_total",
		Help:      "Paragraph set replacements, by result",
	}, []string{"result"})

	m.FetchFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Discovery and page fetch failures",
	}, []string{"platform", "stage"})

	m.CrawlRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crawl_runs_total",
		Help:      "Completed crawl runs, by result",
	}, []string{"result"})

	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served",
	}, []string{"method", "route", "status"})

	m.HTTPDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordIngest counts one pipeline outcome.
func (m *Metrics) RecordIngest(platform, outcome, reason string, d time.Duration) {
	if m == nil {
		return
	}
	m.IngestOutcomes.WithLabelValues(platform, outcome, reason).Inc()
	m.IngestDuration.WithLabelValues(platform).Observe(d.Seconds())
}

// RecordEmbeddings counts paragraph embedding successes and failures.
func (m *Metrics) RecordEmbeddings(succeeded, failed int) {
	if m == nil {
		return
	}
	m.EmbeddingRequests.WithLabelValues("success").Add(float64(succeeded))
	m.EmbeddingRequests.WithLabelValues("failure").Add(float64(failed))
}

// RecordParagraphWrite counts one paragraph set replacement.
func (m *Metrics) RecordParagraphWrite(ok bool) {
	if m == nil {
		return
	}
	m.ParagraphWrites.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordFetchFailure counts a failed discovery or fetch.
func (m *Metrics) RecordFetchFailure(platform, stage string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(platform, stage).Inc()
}

// RecordCrawlRun counts a finished crawl run.
func (m *Metrics) RecordCrawlRun(ok bool) {
	if m == nil {
		return
	}
	m.CrawlRuns.WithLabelValues(resultLabel(ok)).Inc()
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
