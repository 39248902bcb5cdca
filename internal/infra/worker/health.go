package worker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amazetimes/internal/handler/http/respond"
)

// HealthServer exposes liveness, readiness, the last crawl and /metrics.
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	ready    atomic.Bool
	server   *http.Server

	mu   sync.RWMutex
	last *RunReport
}

// RunReport summarises one crawl for /health/last-run.
type RunReport struct {
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Sources    int       `json:"sources"`
	Items      int64     `json:"items"`
	Inserted   int64     `json:"inserted"`
	Duplicated int64     `json:"duplicated"`
	Failed     int64     `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer starts not ready. gatherer may be nil to omit /metrics.
func NewHealthServer(addr string, logger *slog.Logger, gatherer prometheus.Gatherer) *HealthServer {
	return &HealthServer{addr: addr, logger: logger, gatherer: gatherer}
}

// Handler returns the routes served by Start.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/last-run", h.handleLastRun)
	if h.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start serves until ctx is cancelled and returns http.ErrServerClosed after
// a clean shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// SetLastRun replaces the report served at /health/last-run.
func (h *HealthServer) SetLastRun(r RunReport) {
	h.mu.Lock()
	h.last = &r
	h.mu.Unlock()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
		return
	}
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleLastRun(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last == nil {
		respond.JSON(w, http.StatusNotFound, healthResponse{Status: "no run yet"})
		return
	}
	respond.JSON(w, http.StatusOK, last)
}
