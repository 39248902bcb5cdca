package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"amazetimes/internal/resilience/retry"
)

// DefaultClaudeModel is used when Config.Model is empty.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude translates with the Anthropic Messages API.
type Claude struct {
	engine
	client anthropic.Client
}

// NewClaude builds a Claude translator. opts are passed to the SDK client
// after the API key.
func NewClaude(apiKey string, cfg Config, logger *slog.Logger, opts ...option.RequestOption) *Claude {
	if cfg.Model == "" {
		cfg.Model = DefaultClaudeModel
	}
	c := &Claude{
		client: anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
	}
	c.engine = newEngine("claude", cfg, logger, c.complete)
	return c
}

func (c *Claude) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude api error: %w: %w", &retry.StatusError{Code: apiErr.StatusCode, URL: "anthropic messages"}, err)
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var out string
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out += tb.Text
		}
	}
	return out, nil
}
