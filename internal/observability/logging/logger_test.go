package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"amazetimes/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

/* ───────── ロガー ───────── */

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, LevelFromEnv())
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	return entry
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug is filtered at info level")

	logger.Info("article created", slog.String("slug", "x-1"))
	entry := decode(t, &buf)
	assert.Equal(t, "article created", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "x-1", entry["slug"])
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	assert.NotNil(t, NewLogger())
	assert.NotNil(t, NewTextLogger())
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, slog.LevelInfo)

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, base).Info("hello")
	assert.Equal(t, "req-42", decode(t, &buf)["request_id"])

	buf.Reset()
	assert.Same(t, base, WithRequestID(context.Background(), base), "no id keeps the logger")
}

func TestWithTrace(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	ForRequest(ctx, New(&buf, slog.LevelInfo)).Info("traced")
	assert.Equal(t, span.SpanContext().TraceID().String(), decode(t, &buf)["trace_id"])

	base := New(&buf, slog.LevelInfo)
	assert.Same(t, base, WithTrace(context.Background(), base))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
