package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"amazetimes/internal/resilience/retry"
)

// DefaultOpenAIModel is used when Config.Model is empty.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI translates with the chat completions API.
type OpenAI struct {
	engine
	client *openai.Client
}

// NewOpenAI builds an OpenAI translator against the public endpoint.
func NewOpenAI(apiKey string, cfg Config, logger *slog.Logger) *OpenAI {
	return NewOpenAIWithClientConfig(openai.DefaultConfig(apiKey), cfg, logger)
}

// NewOpenAIWithClientConfig allows a different base URL or HTTP client.
func NewOpenAIWithClientConfig(clientCfg openai.ClientConfig, cfg Config, logger *slog.Logger) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	o := &OpenAI{client: openai.NewClientWithConfig(clientCfg)}
	o.engine = newEngine("openai", cfg, logger, o.complete)
	return o
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.cfg.Model,
		MaxTokens: o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		if code := statusCode(err); code != 0 {
			return "", fmt.Errorf("openai api error: %w: %w", &retry.StatusError{Code: code, URL: "openai chat completions"}, err)
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
