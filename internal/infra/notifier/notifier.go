// Package notifier alerts editors about drafts the ingestion worker has
// stored. Alerts go to Slack and Discord incoming webhooks; a failed alert
// never fails the ingestion that triggered it.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/ingest"
	pkgconfig "amazetimes/pkg/config"
)

// Notifier announces a newly stored draft.
type Notifier interface {
	NotifyDraft(ctx context.Context, article *entity.Article) error
}

// NoOp is used when no webhook is configured.
type NoOp struct{}

func (NoOp) NotifyDraft(context.Context, *entity.Article) error { return nil }

// Multi fans an alert out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) NotifyDraft(ctx context.Context, article *entity.Article) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyDraft(ctx, article); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config holds the webhook settings read from the environment.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	// AdminURL is the base of the editor links in alerts, e.g. https://example.com/admin.
	AdminURL string
	Timeout  time.Duration
}

// LoadConfigFromEnv reads SLACK_WEBHOOK_URL, DISCORD_WEBHOOK_URL,
// NOTIFY_ADMIN_URL and NOTIFY_TIMEOUT.
func LoadConfigFromEnv() Config {
	return Config{
		SlackWebhookURL:   pkgconfig.GetEnvString("SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", ""),
		AdminURL:          pkgconfig.GetEnvString("NOTIFY_ADMIN_URL", ""),
		Timeout:           pkgconfig.GetEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
	}
}

// New builds the notifiers enabled by cfg. Without any webhook it returns NoOp.
func New(cfg Config, logger *slog.Logger) Notifier {
	var out Multi
	if cfg.SlackWebhookURL != "" {
		out = append(out, NewSlack(cfg, logger))
	}
	if cfg.DiscordWebhookURL != "" {
		out = append(out, NewDiscord(cfg, logger))
	}
	switch len(out) {
	case 0:
		return NoOp{}
	case 1:
		return out[0]
	default:
		return out
	}
}

// Writer stores ingested articles through Next and then alerts editors.
type Writer struct {
	Next     ingest.Writer
	Notifier Notifier
	Logger   *slog.Logger
}

var _ ingest.Writer = (*Writer)(nil)

// CreateIngested implements ingest.Writer. Alert failures are logged only.
func (w *Writer) CreateIngested(ctx context.Context, f content.Fields, sourceURL string) (*entity.Article, error) {
	article, err := w.Next.CreateIngested(ctx, f, sourceURL)
	if err != nil || w.Notifier == nil {
		return article, err
	}
	if nerr := w.Notifier.NotifyDraft(ctx, article); nerr != nil {
		logger := w.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("draft alert failed",
			slog.String("id", article.ID),
			slog.String("source_url", sourceURL),
			slog.Any("error", nerr))
	}
	return article, nil
}
