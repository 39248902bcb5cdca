// Package http holds the middleware and operational endpoints shared by the
// public and admin APIs. Route handlers live in the news, language and admin
// subpackages.
package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/observability/metrics"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler reports storage connectivity. A nil DB means the in-memory
// store is in use, which is always healthy.
type HealthHandler struct {
	DB      Pinger
	Version string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	check := CheckStatus{Status: statusHealthy, Message: "in-memory"}
	if h.DB != nil {
		check = checkDatabase(ctx, h.DB)
	}

	resp := HealthResponse{
		Status:    check.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{"storage": check},
		Version:   h.Version,
	}
	code := http.StatusOK
	if check.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, resp)
}

func checkDatabase(ctx context.Context, db Pinger) CheckStatus {
	start := time.Now()
	if err := db.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: "ping failed"}
	}
	check := CheckStatus{
		Status:  statusHealthy,
		Details: map[string]any{"latency_ms": time.Since(start).Milliseconds()},
	}
	if s, ok := db.(interface{ Stats() sql.DBStats }); ok {
		stats := s.Stats()
		metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		check.Details["open_connections"] = stats.OpenConnections
		check.Details["in_use"] = stats.InUse
		check.Details["idle"] = stats.Idle
	}
	return check
}

// ReadyHandler answers 200 once storage is reachable.
type ReadyHandler struct {
	DB Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// LiveHandler answers 200 while the process runs.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
