package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazetimes/internal/usecase/ingest"
)

type stubCrawler struct {
	stats *ingest.Stats
	err   error
	block chan struct{}
	calls int
	mu    sync.Mutex
	gotDL bool
}

func (s *stubCrawler) Crawl(ctx context.Context) (*ingest.Stats, error) {
	s.mu.Lock()
	s.calls++
	_, s.gotDL = ctx.Deadline()
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	return s.stats, s.err
}

func newJob(c Crawler) (*Job, *Metrics, *HealthServer) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := NewHealthServer(":0", logger, reg)
	return &Job{Crawler: c, Timeout: time.Minute, Metrics: m, Health: h, Logger: logger}, m, h
}

/* ───────── テスト ───────── */

func TestJob_Success(t *testing.T) {
	c := &stubCrawler{stats: &ingest.Stats{Sources: 3, Items: 12, Inserted: 5, Duplicated: 7}}
	job, m, h := newJob(c)

	assert.Equal(t, StatusSuccess, job.Run(context.Background()))
	assert.True(t, c.gotDL)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JobSourcesProcessed))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.JobArticlesInserted))
	assert.NotZero(t, testutil.ToFloat64(m.JobLastSuccessTime))

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/last-run", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var r RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, StatusSuccess, r.Status)
	assert.EqualValues(t, 5, r.Inserted)
	assert.Empty(t, r.Error)
}

func TestJob_Failure(t *testing.T) {
	c := &stubCrawler{err: errors.New("list sources: connection refused")}
	job, m, h := newJob(c)

	assert.Equal(t, StatusFailure, job.Run(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(StatusFailure)))
	assert.Zero(t, testutil.ToFloat64(m.JobLastSuccessTime))

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/last-run", nil))
	var r RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, StatusFailure, r.Status)
	assert.NotEmpty(t, r.Error)
}

func TestJob_OverlappingTickSkipped(t *testing.T) {
	c := &stubCrawler{stats: &ingest.Stats{}, block: make(chan struct{})}
	job, m, _ := newJob(c)

	done := make(chan string)
	go func() { done <- job.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.calls == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StatusSkipped, job.Run(context.Background()))
	close(c.block)
	assert.Equal(t, StatusSuccess, <-done)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(StatusSkipped)))
}

func TestSchedule(t *testing.T) {
	job, _, _ := newJob(&stubCrawler{stats: &ingest.Stats{}})

	c, err := Schedule(DefaultConfig(), job)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	assert.Equal(t, "Asia/Kolkata", c.Location().String())

	cfg := DefaultConfig()
	cfg.CronSchedule = "bogus"
	_, err = Schedule(cfg, job)
	assert.Error(t, err)
}

func TestHealthServer_Endpoints(t *testing.T) {
	_, _, h := newJob(&stubCrawler{})
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	get := func(path string) int {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("/health"))
	assert.Equal(t, http.StatusServiceUnavailable, get("/health/ready"))
	assert.Equal(t, http.StatusNotFound, get("/health/last-run"))
	assert.Equal(t, http.StatusOK, get("/metrics"))

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, get("/health/ready"))
}

func TestHealthServer_StartStop(t *testing.T) {
	h := NewHealthServer("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- h.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("health server did not stop")
	}
}
