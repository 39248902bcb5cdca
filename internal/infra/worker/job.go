package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/usecase/ingest"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Crawler is satisfied by *ingest.Service.
type Crawler interface {
	Crawl(ctx context.Context) (*ingest.Stats, error)
}

// Job runs one crawl per tick. A tick arriving while a crawl is still
// running is skipped.
type Job struct {
	Crawler Crawler
	Timeout time.Duration
	Metrics *Metrics
	Health  *HealthServer
	Logger  *slog.Logger
	Now     func() time.Time

	running sync.Mutex
}

// Run crawls once under the job timeout. It reports the run status.
func (j *Job) Run(ctx context.Context) string {
	if !j.running.TryLock() {
		j.Logger.Warn("crawl still running, tick skipped")
		j.record(StatusSkipped, j.now(), 0, nil, nil)
		return StatusSkipped
	}
	defer j.running.Unlock()

	start := j.now()
	j.Logger.Info("crawl started")

	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	stats, err := j.Crawler.Crawl(ctx)
	elapsed := j.now().Sub(start)
	if err != nil {
		j.Logger.Error("crawl failed", slog.String("error", respond.SanitizeError(err)))
		j.record(StatusFailure, start, elapsed, stats, err)
		return StatusFailure
	}

	j.Logger.Info("crawl completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("items", stats.Items),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int64("stale", stats.Stale),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	j.record(StatusSuccess, start, elapsed, stats, nil)
	return StatusSuccess
}

func (j *Job) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *Job) record(status string, start time.Time, elapsed time.Duration, stats *ingest.Stats, err error) {
	if j.Metrics != nil {
		j.Metrics.RecordRun(status, elapsed.Seconds(), stats)
	}
	if j.Health == nil || status == StatusSkipped {
		return
	}
	r := RunReport{Status: status, StartedAt: start, DurationMS: elapsed.Milliseconds()}
	if stats != nil {
		r.Sources = stats.Sources
		r.Items = stats.Items
		r.Inserted = stats.Inserted
		r.Duplicated = stats.Duplicated
		r.Failed = stats.Failed
	}
	if err != nil {
		r.Error = respond.SanitizeError(err)
	}
	j.Health.SetLastRun(r)
}

// Schedule registers job on a cron in cfg's time zone. The caller starts
// and stops the returned cron.
func Schedule(cfg Config, job *Job) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := c.AddFunc(cfg.CronSchedule, func() { job.Run(context.Background()) }); err != nil {
		return nil, err
	}
	return c, nil
}
