package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"amazetimes/internal/domain/entity"
)

// Block Kit limits, in characters.
const (
	maxSectionText  = 3000
	maxFallbackText = 150
)

// Slack posts draft alerts to a Slack incoming webhook.
// Slack accepts about one message per second per webhook.
type Slack struct {
	hook     *webhook
	adminURL string
}

// NewSlack returns a Slack notifier for cfg.SlackWebhookURL.
func NewSlack(cfg Config, logger *slog.Logger) *Slack {
	return &Slack{
		hook:     newWebhook("slack", cfg.SlackWebhookURL, cfg.Timeout, 1, 1, logger),
		adminURL: cfg.AdminURL,
	}
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *Slack) NotifyDraft(ctx context.Context, article *entity.Article) error {
	return s.hook.post(ctx, article, s.payload(article))
}

func (s *Slack) payload(a *entity.Article) slackPayload {
	title := "*" + a.TitleEN + "*"
	if link := editLink(s.adminURL, a); link != "" {
		title = fmt.Sprintf("*<%s|%s>*", link, a.TitleEN)
	}
	section := strings.Join([]string{title, a.TitleTA}, "\n")

	meta := []string{"New draft", string(a.Category)}
	if a.SourceURL != nil {
		meta = append(meta, fmt.Sprintf("<%s|source>", *a.SourceURL))
	}

	return slackPayload{
		Text: truncate("New draft: "+a.TitleEN, maxFallbackText),
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: truncate(section, maxSectionText)}},
			{Type: "context", Elements: []slackText{{Type: "mrkdwn", Text: strings.Join(meta, " • ")}}},
		},
	}
}
