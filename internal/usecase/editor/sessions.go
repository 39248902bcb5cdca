package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Sessions hands out one Editor per admin user, so that two requests from
// the same user share the in-flight guard. Idle editors expire.
type Sessions struct {
	store  Store
	cache  Invalidator
	ledger *Ledger
	logger *slog.Logger

	mu      sync.Mutex
	editors *expirable.LRU[string, *Editor]
}

// NewSessions keeps at most size editors, each for ttl after last use.
func NewSessions(store Store, cache Invalidator, ledger *Ledger, logger *slog.Logger, size int, ttl time.Duration) *Sessions {
	if size <= 0 {
		size = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		store:   store,
		cache:   cache,
		ledger:  ledger,
		logger:  logger,
		editors: expirable.NewLRU[string, *Editor](size, nil, ttl),
	}
}

// For returns the editor of user, creating it on first use.
func (s *Sessions) For(user string) *Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ed, ok := s.editors.Get(user); ok {
		// Add refreshes the expiry
		s.editors.Add(user, ed)
		return ed
	}
	ed := New(s.store, s.cache, s.ledger, s.logger.With("editor", user))
	s.editors.Add(user, ed)
	return ed
}
