// Package circuitbreaker wraps github.com/sony/gobreaker for the remote calls
// made during ingestion: feed downloads, article pages and translation APIs.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned without calling the wrapped function while the breaker is open.
var ErrOpen = gobreaker.ErrOpenState

// Config holds the trip rule and timings of a breaker.
type Config struct {
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0..1) that trips the breaker
	// once MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig trips at 60% failures over at least 5 calls.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// FeedConfig is used per feed host. Feeds are polled rarely, so the breaker
// tolerates more failures before opening.
func FeedConfig() Config {
	return Config{
		Name:             "feed-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// PageConfig is used for article page downloads.
func PageConfig() Config {
	cfg := DefaultConfig("page-fetch")
	cfg.MaxRequests = 5
	cfg.Interval = 60 * time.Second
	return cfg
}

// TranslatorConfig is used for a translation provider such as "claude" or "openai".
func TranslatorConfig(provider string) Config {
	return DefaultConfig(provider + "-translate")
}

// Breaker is safe for concurrent use.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

// New builds a Breaker. State changes are logged on logger, or slog.Default when nil.
func New(cfg Config, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings), name: cfg.Name}
}

// Name returns the configured name.
func (b *Breaker) Name() string { return b.name }

// State returns the current gobreaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// IsOpen reports whether calls are currently rejected.
func (b *Breaker) IsOpen() bool { return b.cb.State() == gobreaker.StateOpen }

// Do runs fn through b and returns its typed result.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// IsOpenError reports whether err was produced by an open or saturated breaker.
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
