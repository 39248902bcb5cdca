package http

import (
	"net/http"
	"strconv"
	"time"

	"amazetimes/internal/handler/http/route"
	"amazetimes/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request count, latency and sizes. Requests are
// labelled with the matched route pattern, never the raw path, so slugs and
// ids do not multiply the series. Unmatched requests share one label.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		sw := wrap(w)
		start := time.Now()
		next.ServeHTTP(sw, r)

		pattern := route.Pattern(r.Context())
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(sw.status),
			time.Since(start), int(r.ContentLength), sw.bytes)
	})
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
