package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	hhttp "amazetimes/internal/handler/http"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         hhttp.Pinger
		wantCode   int
		wantStatus string
	}{
		{name: "in-memory storage", db: nil, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "database reachable", db: stubPinger{}, wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "database down", db: stubPinger{err: errors.New("connection refused")}, wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &hhttp.HealthHandler{DB: tt.db, Version: "test"}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			var resp hhttp.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "test", resp.Version)
			assert.Contains(t, resp.Checks, "storage")
		})
	}
}

func TestHealthHandler_SQLStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	h := &hhttp.HealthHandler{DB: db}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp hhttp.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Checks["storage"].Details, "open_connections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadyAndLive(t *testing.T) {
	w := httptest.NewRecorder()
	(&hhttp.ReadyHandler{DB: stubPinger{err: errors.New("down")}}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	(&hhttp.ReadyHandler{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	hhttp.LiveHandler{}.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
