package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"amazetimes/internal/usecase/ingest"
)

// Metrics covers configuration loading and crawl runs.
type Metrics struct {
	ConfigLoadTimestamp    prometheus.Gauge
	ConfigValidationErrors *prometheus.CounterVec
	ConfigFallbacks        *prometheus.CounterVec
	ConfigFallbackActive   prometheus.Gauge

	JobRuns             *prometheus.CounterVec
	JobDuration         prometheus.Histogram
	JobSourcesProcessed prometheus.Counter
	JobArticlesInserted prometheus.Counter
	JobLastSuccessTime  prometheus.Gauge
}

// NewMetrics registers the worker metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConfigLoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_load_timestamp",
			Help: "Unix timestamp of the last worker configuration load",
		}),
		ConfigValidationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_validation_errors_total",
			Help: "Worker configuration values that failed validation",
		}, []string{"field"}),
		ConfigFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Worker configuration fields reset to their default",
		}, []string{"field"}),
		ConfigFallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_config_fallback_active",
			Help: "1 if any worker configuration fallback is active",
		}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Crawl job runs by status",
		}, []string{"status"}),
		JobDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Crawl job duration in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),
		JobSourcesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_sources_processed_total",
			Help: "Feed sources processed across all crawl runs",
		}),
		JobArticlesInserted: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_articles_inserted_total",
			Help: "Draft articles stored across all crawl runs",
		}),
		JobLastSuccessTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful crawl",
		}),
	}
}

func (m *Metrics) RecordLoadTimestamp() { m.ConfigLoadTimestamp.SetToCurrentTime() }

func (m *Metrics) RecordValidationError(field string) {
	m.ConfigValidationErrors.WithLabelValues(field).Inc()
}

func (m *Metrics) RecordFallback(field string) { m.ConfigFallbacks.WithLabelValues(field).Inc() }

func (m *Metrics) SetFallbackActive(active bool) {
	if active {
		m.ConfigFallbackActive.Set(1)
		return
	}
	m.ConfigFallbackActive.Set(0)
}

// RecordRun records a finished crawl. stats may be nil on failure.
func (m *Metrics) RecordRun(status string, seconds float64, stats *ingest.Stats) {
	m.JobRuns.WithLabelValues(status).Inc()
	m.JobDuration.Observe(seconds)
	if stats == nil {
		return
	}
	m.JobSourcesProcessed.Add(float64(stats.Sources))
	m.JobArticlesInserted.Add(float64(stats.Inserted))
	if status == StatusSuccess {
		m.JobLastSuccessTime.SetToCurrentTime()
	}
}
