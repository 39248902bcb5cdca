package translator

import (
	"fmt"
	"log/slog"

	"amazetimes/internal/usecase/ingest"
	"amazetimes/pkg/config"
)

// Options selects a provider.
type Options struct {
	// Type is "claude", "openai" or "copy". Empty means copy.
	Type         string
	AnthropicKey string
	OpenAIKey    string
	Config       Config
}

// OptionsFromEnv reads TRANSLATOR_TYPE and the provider API keys.
func OptionsFromEnv() Options {
	return Options{
		Type:         config.GetEnvString("TRANSLATOR_TYPE", "copy"),
		AnthropicKey: config.GetEnvString("ANTHROPIC_API_KEY", ""),
		OpenAIKey:    config.GetEnvString("OPENAI_API_KEY", ""),
		Config:       LoadConfig(),
	}
}

// New returns the translator named by opts.Type.
func New(opts Options, logger *slog.Logger) (ingest.Translator, error) {
	switch opts.Type {
	case "", "copy":
		return Copy{}, nil
	case "claude":
		if opts.AnthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when TRANSLATOR_TYPE=claude")
		}
		return NewClaude(opts.AnthropicKey, opts.Config, logger), nil
	case "openai":
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when TRANSLATOR_TYPE=openai")
		}
		return NewOpenAI(opts.OpenAIKey, opts.Config, logger), nil
	default:
		return nil, fmt.Errorf("unknown translator type %q", opts.Type)
	}
}
