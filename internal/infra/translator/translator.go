// Package translator produces the English or Tamil variant of ingested
// article text with a hosted language model.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"amazetimes/internal/i18n"
	"amazetimes/internal/resilience/circuitbreaker"
	"amazetimes/internal/resilience/retry"
	"amazetimes/pkg/config"
)

var (
	ErrSameLanguage = errors.New("source and target language are the same")
	ErrEmptyOutput  = errors.New("model returned no text")
)

// Config is shared by the model-backed translators.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// MaxInputRunes cuts longer input before it is sent.
	MaxInputRunes int
}

// LoadConfig reads TRANSLATOR_* variables. An empty model keeps the
// provider's default.
func LoadConfig() Config {
	return Config{
		Model:         config.GetEnvString("TRANSLATOR_MODEL", ""),
		MaxTokens:     config.GetEnvPositiveInt("TRANSLATOR_MAX_TOKENS", 4096),
		Timeout:       config.GetEnvDuration("TRANSLATOR_TIMEOUT", 60*time.Second),
		MaxInputRunes: config.GetEnvPositiveInt("TRANSLATOR_MAX_INPUT_RUNES", 8000),
	}
}

// completion sends one prompt and returns the model's text.
type completion func(ctx context.Context, prompt string) (string, error)

// engine wraps a completion with a timeout, a circuit breaker and retries.
type engine struct {
	name    string
	cfg     Config
	breaker *circuitbreaker.Breaker
	retry   retry.Config
	logger  *slog.Logger
	call    completion
}

func newEngine(name string, cfg Config, logger *slog.Logger, call completion) engine {
	if logger == nil {
		logger = slog.Default()
	}
	return engine{
		name:    name,
		cfg:     cfg,
		breaker: circuitbreaker.New(circuitbreaker.TranslatorConfig(name), logger),
		retry:   retry.TranslatorConfig(),
		logger:  logger.With(slog.String("translator", name)),
		call:    call,
	}
}

func (e *engine) Name() string { return e.name }

func (e *engine) Translate(ctx context.Context, text string, from, to i18n.Language) (string, error) {
	if from == to {
		return "", ErrSameLanguage
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if e.cfg.MaxInputRunes > 0 && utf8.RuneCountInString(text) > e.cfg.MaxInputRunes {
		e.logger.WarnContext(ctx, "input truncated",
			slog.Int("runes", utf8.RuneCountInString(text)),
			slog.Int("limit", e.cfg.MaxInputRunes))
		text = truncateRunes(text, e.cfg.MaxInputRunes)
	}
	prompt := buildPrompt(text, from, to)

	var out string
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		res, err := circuitbreaker.Do(e.breaker, func() (string, error) {
			callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
			defer cancel()
			return e.call(callCtx, prompt)
		})
		if err != nil {
			return err
		}
		out = strings.TrimSpace(res)
		if out == "" {
			return ErrEmptyOutput
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("translate %s>%s via %s: %w", from, to, e.name, err)
	}
	return out, nil
}

func languageName(l i18n.Language) string {
	switch l {
	case i18n.Tamil:
		return "Tamil"
	default:
		return "English"
	}
}

func buildPrompt(text string, from, to i18n.Language) string {
	return fmt.Sprintf(
		"Translate the following news text from %s to %s. "+
			"Keep names of people, parties and places recognisable, keep the paragraph breaks, "+
			"and reply with the translation only.\n\n%s",
		languageName(from), languageName(to), text)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
