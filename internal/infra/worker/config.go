// Package worker holds the ingestion worker's configuration, metrics,
// health endpoints and crawl job.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"amazetimes/internal/usecase/ingest"
	"amazetimes/pkg/config"
)

// Config controls the crawl schedule and each crawl.
type Config struct {
	// CronSchedule is a standard five-field expression.
	CronSchedule string        `validate:"required,cronspec"`
	Timezone     string        `validate:"required,timezone"`
	CrawlTimeout time.Duration `validate:"min=1m,max=4h"`
	HealthPort   int           `validate:"min=1024,max=65535"`

	Parallelism          int           `validate:"min=1,max=50"`
	TranslateParallelism int           `validate:"min=1,max=20"`
	Threshold            int           `validate:"min=0,max=100000"`
	MaxItemsPerSource    int           `validate:"min=0,max=500"`
	MaxAge               time.Duration `validate:"min=0"`

	// RedisURL enables the seen-set when set.
	RedisURL string        `validate:"omitempty,url"`
	SeenTTL  time.Duration `validate:"min=0"`
}

// DefaultConfig crawls every 30 minutes, Indian Standard Time.
func DefaultConfig() Config {
	ic := ingest.DefaultConfig()
	return Config{
		CronSchedule:         "*/30 * * * *",
		Timezone:             "Asia/Kolkata",
		CrawlTimeout:         20 * time.Minute,
		HealthPort:           9091,
		Parallelism:          ic.Parallelism,
		TranslateParallelism: int(ic.TranslateParallelism),
		Threshold:            ic.Threshold,
		MaxItemsPerSource:    ic.MaxItemsPerSource,
		MaxAge:               ic.MaxAge,
		SeenTTL:              30 * 24 * time.Hour,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s: failed %q (%v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Join(msgs...)
}

// Ingest returns the crawl settings for ingest.Service.
func (c Config) Ingest() ingest.Config {
	return ingest.Config{
		Parallelism:          c.Parallelism,
		TranslateParallelism: int64(c.TranslateParallelism),
		Threshold:            c.Threshold,
		MaxItemsPerSource:    c.MaxItemsPerSource,
		MaxAge:               c.MaxAge,
	}
}

// Location returns the schedule's time zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv never fails: a field whose value does not validate
// falls back to its default, with a warning and a metric.
//
//	CRON_SCHEDULE, WORKER_TIMEZONE, CRAWL_TIMEOUT, WORKER_HEALTH_PORT,
//	INGEST_PARALLELISM, TRANSLATE_PARALLELISM, PAGE_FETCH_THRESHOLD,
//	INGEST_MAX_ITEMS_PER_SOURCE, INGEST_MAX_AGE, REDIS_URL, SEEN_TTL
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	def := DefaultConfig()
	cfg := Config{
		CronSchedule:         config.GetEnvString("CRON_SCHEDULE", def.CronSchedule),
		Timezone:             config.GetEnvString("WORKER_TIMEZONE", def.Timezone),
		CrawlTimeout:         config.GetEnvDuration("CRAWL_TIMEOUT", def.CrawlTimeout),
		HealthPort:           config.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort),
		Parallelism:          config.GetEnvInt("INGEST_PARALLELISM", def.Parallelism),
		TranslateParallelism: config.GetEnvInt("TRANSLATE_PARALLELISM", def.TranslateParallelism),
		Threshold:            config.GetEnvInt("PAGE_FETCH_THRESHOLD", def.Threshold),
		MaxItemsPerSource:    config.GetEnvInt("INGEST_MAX_ITEMS_PER_SOURCE", def.MaxItemsPerSource),
		MaxAge:               config.GetEnvDuration("INGEST_MAX_AGE", def.MaxAge),
		RedisURL:             config.GetEnvString("REDIS_URL", def.RedisURL),
		SeenTTL:              config.GetEnvDuration("SEEN_TTL", def.SeenTTL),
	}

	fallback := false
	var verrs validator.ValidationErrors
	if err := validate.Struct(cfg); errors.As(err, &verrs) {
		cur := reflect.ValueOf(&cfg).Elem()
		defaults := reflect.ValueOf(def)
		for _, fe := range verrs {
			name := fe.StructField()
			cur.FieldByName(name).Set(defaults.FieldByName(name))
			fallback = true
			if metrics != nil {
				metrics.RecordValidationError(name)
				metrics.RecordFallback(name)
			}
			logger.Warn("configuration fallback applied",
				slog.String("field", name),
				slog.String("rule", fe.Tag()),
				slog.Any("invalid_value", fe.Value()),
				slog.Any("default_value", defaults.FieldByName(name).Interface()))
		}
	}

	if metrics != nil {
		metrics.SetFallbackActive(fallback)
		metrics.RecordLoadTimestamp()
	}
	return cfg
}
