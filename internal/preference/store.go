// Package preference holds the display-language preference.
//
// A Store owns one language value and the Persister that remembers it between
// sessions. Readers never block; writes are serialized and persisted before
// they become visible.
package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"amazetimes/internal/i18n"
)

// Key is the name under which the preference is persisted.
const Key = "amazetimes-language"

// ErrInvalidLanguage is returned by SetLanguage for values other than en and ta.
var ErrInvalidLanguage = errors.New("invalid language")

// Persister loads and saves the raw preference value.
type Persister interface {
	// Load returns the stored value, or "" when nothing is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, lang i18n.Language) error
}

// Store is the language preference of one user session or process.
type Store struct {
	current   atomic.Value // i18n.Language
	mu        sync.Mutex   // serializes writers
	persister Persister
	onChange  func(i18n.Language)
	absent    i18n.Language
}

// Option configures a Store.
type Option func(*Store)

// WithOnChange registers a callback invoked after every successful SetLanguage.
func WithOnChange(fn func(i18n.Language)) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithAbsentDefault sets the language used when nothing is persisted yet,
// for example one negotiated from Accept-Language. Invalid stored values and
// load failures still yield English. An invalid lang is ignored.
func WithAbsentDefault(lang i18n.Language) Option {
	return func(s *Store) {
		if lang.Valid() {
			s.absent = lang
		}
	}
}

// Open reads the persisted value. Absent or invalid values yield English
// unless WithAbsentDefault names another language for the absent case.
// A failing Load is logged and also yields English; the store stays usable.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{persister: p, absent: i18n.Default}
	for _, opt := range opts {
		opt(s)
	}

	lang := i18n.Default
	if p != nil {
		raw, err := p.Load(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to load language preference, using default",
				slog.String("default", string(i18n.Default)),
				slog.Any("error", err))
		} else if raw == "" {
			lang = s.absent
		} else {
			lang = i18n.ParseOrDefault(raw)
		}
	}
	s.current.Store(lang)
	return s
}

// Language returns the current language.
func (s *Store) Language() i18n.Language {
	if v, ok := s.current.Load().(i18n.Language); ok {
		return v
	}
	return i18n.Default
}

// Resolver returns a resolver bound to the current language.
func (s *Store) Resolver() i18n.Resolver {
	return i18n.NewResolver(s.Language())
}

// SetLanguage validates, persists and then publishes lang.
// When persisting fails the in-memory value is left unchanged.
func (s *Store) SetLanguage(ctx context.Context, lang i18n.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Save(ctx, lang); err != nil {
			return fmt.Errorf("persist language: %w", err)
		}
	}
	s.current.Store(lang)

	if s.onChange != nil {
		s.onChange(lang)
	}
	return nil
}
