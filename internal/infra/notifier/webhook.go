package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/resilience/retry"
)

// webhook posts JSON payloads to one incoming-webhook URL.
type webhook struct {
	name    string
	url     string
	client  *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

func newWebhook(name, url string, timeout time.Duration, limit rate.Limit, burst int, logger *slog.Logger) *webhook {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 2
	return &webhook{
		name:    name,
		url:     url,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		retry:   cfg,
		logger:  logger,
	}
}

// post waits for the rate limiter, then sends payload with retries on
// 429 and 5xx responses.
func (w *webhook) post(ctx context.Context, article *entity.Article, payload any) error {
	requestID := uuid.NewString()
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", w.name, err)
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", w.name, err)
	}

	err = retry.Do(ctx, w.retry, func(ctx context.Context) error {
		return w.send(ctx, body)
	})
	metrics.RecordDraftAlert(w.name, err == nil)
	if err != nil {
		w.logger.Error("draft alert not delivered",
			slog.String("request_id", requestID),
			slog.String("channel", w.name),
			slog.String("id", article.ID),
			slog.Any("error", err))
		return fmt.Errorf("%s notification: %w", w.name, err)
	}
	w.logger.Info("draft alert delivered",
		slog.String("request_id", requestID),
		slog.String("channel", w.name),
		slog.String("id", article.ID))
	return nil
}

func (w *webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the webhook URL carries the token; keep it out of errors
		return &retry.StatusError{Code: resp.StatusCode}
	}
	return nil
}

// editLink returns the editor URL of article, or "" without an admin base.
func editLink(adminURL string, article *entity.Article) string {
	if adminURL == "" {
		return ""
	}
	return strings.TrimRight(adminURL, "/") + "/articles/" + article.ID
}

// truncate cuts s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	const suffix = "..."
	if n <= len(suffix) {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-len(suffix)]) + suffix
}
