package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total login attempts by result",
		},
		[]string{"result"}, // success | failure | rate_limited
	)

	authDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Login handling duration",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	forbiddenAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forbidden_attempts_total",
			Help: "Admin requests rejected by reason and method",
		},
		[]string{"reason", "method"},
	)
)

// RecordLogin counts a login attempt and observes its duration.
func RecordLogin(result string, seconds float64) {
	authRequestsTotal.WithLabelValues(result).Inc()
	authDuration.Observe(seconds)
}

// RecordForbidden counts a rejected admin request.
func RecordForbidden(reason, method string) {
	forbiddenAttempts.WithLabelValues(reason, method).Inc()
}
