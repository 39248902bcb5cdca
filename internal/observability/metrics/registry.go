package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Every collector is exported as amazetimes_<subsystem>_<name>.
const namespace = "amazetimes"

func counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogramVec(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64) prometheus.Histogram {
	return promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)

// HTTP surface. path is the route pattern, never the raw URL.
var (
	HTTPRequestsTotal   = counterVec("http", "requests_total", "HTTP requests served.", "method", "path", "status")
	HTTPRequestDuration = histogramVec("http", "request_duration_seconds", "HTTP request latency.", prometheus.DefBuckets, "method", "path", "status")
	HTTPRequestSize     = histogramVec("http", "request_size_bytes", "HTTP request body size.", sizeBuckets, "method", "path")
	HTTPResponseSize    = histogramVec("http", "response_size_bytes", "HTTP response body size.", sizeBuckets, "method", "path")
	ActiveConnections   = gauge("http", "active_connections", "Requests currently in flight.")
)

// Site content: article writes, the admin editor, readers and ads.
var (
	ArticleMutationsTotal         = counterVec("content", "article_mutations_total", "Article creates, updates and deletes.", "operation", "source")
	EditorSubmissionsTotal        = counterVec("content", "editor_submissions_total", "Admin editor submissions by result (success, failure, invalid, duplicate).", "mode", "result")
	EditorValidationFailuresTotal = counterVec("content", "editor_validation_failures_total", "Editor submissions rejected, by first failing field.", "field")
	LanguageSwitchesTotal         = counterVec("content", "language_switches_total", "Explicit display language changes.", "language")
	AdPlacementFailuresTotal      = counterVec("content", "ad_placement_failures_total", "Ad placements reported as unfilled.", "page")
	QueryCacheEventsTotal         = counterVec("content", "query_cache_events_total", "Query cache hits, misses and invalidated entries.", "operation", "event")
)

// RSS ingestion worker.
var (
	ArticlesIngestedTotal     = counterVec("ingest", "items_total", "Feed items by result (inserted, duplicate, failed).", "source", "result")
	FeedCrawlDuration         = histogramVec("ingest", "feed_crawl_duration_seconds", "Time to crawl one feed source.", prometheus.ExponentialBuckets(0.1, 2, 10), "source")
	FeedCrawlErrors           = counterVec("ingest", "feed_crawl_errors_total", "Feed crawl errors.", "source", "error_type")
	TranslationsTotal         = counterVec("ingest", "translations_total", "Machine translations by provider and status.", "provider", "status")
	TranslationDuration       = histogram("ingest", "translation_duration_seconds", "Time to translate one article.", prometheus.ExponentialBuckets(0.5, 2, 10))
	ContentFetchAttemptsTotal = counterVec("ingest", "page_fetch_attempts_total", "Article page reads by result (success, failure, skipped).", "result")
	ContentFetchDuration      = histogram("ingest", "page_fetch_duration_seconds", "Time to read one article page.", []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8})
	DraftAlertsTotal          = counterVec("ingest", "draft_alerts_total", "Editor alerts about new drafts by channel and result.", "channel", "result")
)

// Database.
var (
	DBQueryDuration     = histogramVec("db", "query_duration_seconds", "Repository call latency by operation.", prometheus.ExponentialBuckets(0.001, 2, 10), "operation")
	DBConnectionsActive = gauge("db", "connections_active", "Pool connections in use.")
	DBConnectionsIdle   = gauge("db", "connections_idle", "Idle pool connections.")
)

// RecordHTTPRequest records one served request. Sizes of zero are not observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordDraftAlert counts one delivered or failed editor alert.
func RecordDraftAlert(channel string, delivered bool) {
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	DraftAlertsTotal.WithLabelValues(channel, result).Inc()
}
