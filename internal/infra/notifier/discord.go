package notifier

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"amazetimes/internal/domain/entity"
)

// Discord embed limits, in characters.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
)

// draftColor is the embed side bar colour.
const draftColor = 0xF5A623

// Discord posts draft alerts to a Discord webhook.
// Discord allows 30 requests per minute per webhook.
type Discord struct {
	hook     *webhook
	adminURL string
}

// NewDiscord returns a Discord notifier for cfg.DiscordWebhookURL.
func NewDiscord(cfg Config, logger *slog.Logger) *Discord {
	return &Discord{
		hook:     newWebhook("discord", cfg.DiscordWebhookURL, cfg.Timeout, rate.Limit(0.5), 3, logger),
		adminURL: cfg.AdminURL,
	}
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url,omitempty"`
	Color       int           `json:"color"`
	Footer      discordFooter `json:"footer"`
	Timestamp   string        `json:"timestamp"`
}

type discordFooter struct {
	Text string `json:"text"`
}

func (d *Discord) NotifyDraft(ctx context.Context, article *entity.Article) error {
	return d.hook.post(ctx, article, d.payload(article))
}

func (d *Discord) payload(a *entity.Article) discordPayload {
	footer := "New draft • " + string(a.Category)
	if a.SourceURL != nil {
		footer += " • " + *a.SourceURL
	}
	return discordPayload{Embeds: []discordEmbed{{
		Title:       truncate(a.TitleEN, maxEmbedTitle),
		Description: truncate(a.TitleTA, maxEmbedDescription),
		URL:         editLink(d.adminURL, a),
		Color:       draftColor,
		Footer:      discordFooter{Text: footer},
		Timestamp:   a.CreatedAt.UTC().Format(time.RFC3339),
	}}}
}
