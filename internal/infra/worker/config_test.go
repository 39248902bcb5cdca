package worker

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())

	ic := cfg.Ingest()
	assert.Equal(t, cfg.Parallelism, ic.Parallelism)
	assert.EqualValues(t, cfg.TranslateParallelism, ic.TranslateParallelism)
	assert.Equal(t, cfg.MaxAge, ic.MaxAge)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad cron", func(c *Config) { c.CronSchedule = "every hour" }, "CronSchedule"},
		{"six field cron", func(c *Config) { c.CronSchedule = "0 */5 * * * *" }, "CronSchedule"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "Timezone"},
		{"short timeout", func(c *Config) { c.CrawlTimeout = 10 * time.Second }, "CrawlTimeout"},
		{"long timeout", func(c *Config) { c.CrawlTimeout = 5 * time.Hour }, "CrawlTimeout"},
		{"privileged port", func(c *Config) { c.HealthPort = 80 }, "HealthPort"},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }, "Parallelism"},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }, "Threshold"},
		{"bad redis url", func(c *Config) { c.RedisURL = "::nope" }, "RedisURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadConfigFromEnv_Values(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "0 */2 * * *")
	t.Setenv("WORKER_TIMEZONE", "UTC")
	t.Setenv("CRAWL_TIMEOUT", "45m")
	t.Setenv("INGEST_PARALLELISM", "4")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	m := NewMetrics(prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(slog.New(slog.NewTextHandler(io.Discard, nil)), m)

	assert.Equal(t, "0 */2 * * *", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 45*time.Minute, cfg.CrawlTimeout)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ConfigFallbackActive))
	assert.NotZero(t, testutil.ToFloat64(m.ConfigLoadTimestamp))
}

func TestLoadConfigFromEnv_FallsBackPerField(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "not a cron")
	t.Setenv("WORKER_TIMEZONE", "Invalid/Zone")
	t.Setenv("WORKER_HEALTH_PORT", "80")
	t.Setenv("INGEST_PARALLELISM", "8")

	var buf bytes.Buffer
	m := NewMetrics(prometheus.NewRegistry())
	cfg := LoadConfigFromEnv(slog.New(slog.NewTextHandler(&buf, nil)), m)

	def := DefaultConfig()
	assert.Equal(t, def.CronSchedule, cfg.CronSchedule)
	assert.Equal(t, def.Timezone, cfg.Timezone)
	assert.Equal(t, def.HealthPort, cfg.HealthPort)
	// valid fields are kept
	assert.Equal(t, 8, cfg.Parallelism)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigFallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigFallbacks.WithLabelValues("CronSchedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigValidationErrors.WithLabelValues("HealthPort")))
	assert.Contains(t, buf.String(), "configuration fallback applied")
	assert.Contains(t, buf.String(), "not a cron")
}

func TestLoadConfigFromEnv_NilMetrics(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "bad")
	cfg := LoadConfigFromEnv(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	assert.Equal(t, DefaultConfig().CronSchedule, cfg.CronSchedule)
}
