package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"amazetimes/internal/infra/cache"
	"amazetimes/internal/infra/db"
	"amazetimes/internal/infra/fetcher"
	"amazetimes/internal/infra/notifier"
	"amazetimes/internal/infra/scraper"
	"amazetimes/internal/infra/storage"
	"amazetimes/internal/infra/translator"
	workerPkg "amazetimes/internal/infra/worker"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/ingest"
	envconfig "amazetimes/pkg/config"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)
	cfg := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("crawl_timeout", cfg.CrawlTimeout),
		slog.Int("health_port", cfg.HealthPort),
		slog.Int("parallelism", cfg.Parallelism),
		slog.Bool("seen_set", cfg.RedisURL != ""))

	store, err := storage.Open(ctx, storage.Options{
		Driver:  envconfig.GetEnvString("STORAGE_DRIVER", storage.DriverPostgres),
		DSN:     os.Getenv("DATABASE_URL"),
		Migrate: envconfig.GetEnvBool("DB_AUTO_MIGRATE", false),
		Pool:    db.ConnectionConfigFromEnv(),
	})
	if err != nil {
		fatal(logger, "failed to open storage", err)
	}
	defer func() { _ = store.Close() }()

	svc, cleanup := setupIngest(ctx, logger, store, cfg)
	defer cleanup()

	health := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger, prometheus.DefaultGatherer)
	go func() {
		if err := health.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := &workerPkg.Job{
		Crawler: svc,
		Timeout: cfg.CrawlTimeout,
		Metrics: workerMetrics,
		Health:  health,
		Logger:  logger,
	}
	c, err := workerPkg.Schedule(cfg, job)
	if err != nil {
		fatal(logger, "failed to add cron job", err)
	}
	c.Start()
	health.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	if envconfig.GetEnvBool("CRAWL_ON_START", false) {
		go job.Run(ctx)
	}

	<-ctx.Done()
	logger.Info("worker shutting down")
	health.SetReady(false)
	// wait for a running crawl
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("crawl still running at shutdown")
	}
	logger.Info("worker stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

// setupIngest wires the crawl service. The returned cleanup closes Redis.
func setupIngest(ctx context.Context, logger *slog.Logger, store *storage.Store, cfg workerPkg.Config) (*ingest.Service, func()) {
	tr, err := translator.New(translator.OptionsFromEnv(), logger)
	if err != nil {
		fatal(logger, "failed to create translator", err)
	}
	logger.Info("translator initialized", slog.String("type", tr.Name()))

	svc := &ingest.Service{
		Sources:  store.Sources,
		Existing: store.Articles,
		Writer: &notifier.Writer{
			Next:     content.NewService(store.Articles, store.Parties),
			Notifier: notifier.New(notifier.LoadConfigFromEnv(), logger),
			Logger:   logger,
		},
		Feeds:      scraper.NewRSSFetcher(scraper.NewHTTPClient(30*time.Second), logger),
		Translator: tr,
		Config:     cfg.Ingest(),
		Logger:     logger,
	}

	pageCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid page fetch configuration, using defaults", slog.Any("error", err))
	}
	if pageCfg.Enabled {
		svc.Pages = fetcher.NewPageFetcher(pageCfg, logger)
		logger.Info("page reading enabled",
			slog.Int("threshold", cfg.Threshold),
			slog.Duration("timeout", pageCfg.Timeout))
	} else {
		logger.Info("page reading disabled")
	}

	cleanup := func() {}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// the stored source links still prevent duplicates
			logger.Warn("redis unavailable, seen-set disabled", slog.Any("error", err))
		} else {
			svc.Seen = cache.NewSeenSet(client, cache.DefaultPrefix, cfg.SeenTTL)
			cleanup = func() { _ = client.Close() }
		}
	}
	return svc, cleanup
}
