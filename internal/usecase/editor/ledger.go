package editor

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Ledger remembers idempotency tokens of recent submissions. A token is
// claimed when a submission starts, completed with its outcome on success
// and released on failure so the same attempt can be retried.
type Ledger struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *ledgerEntry]
}

type ledgerEntry struct {
	done    bool
	outcome Outcome
}

// NewLedger keeps up to size tokens for ttl.
func NewLedger(size int, ttl time.Duration) *Ledger {
	if size <= 0 {
		size = 1024
	}
	return &Ledger{entries: expirable.NewLRU[string, *ledgerEntry](size, nil, ttl)}
}

// claim reserves token. When the token already completed the recorded
// outcome is returned; when it is still running ErrDuplicateSubmission is.
func (l *Ledger) claim(token string) (*Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries.Get(token); ok {
		if !e.done {
			return nil, ErrDuplicateSubmission
		}
		replay := e.outcome
		replay.Replayed = true
		return &replay, nil
	}
	l.entries.Add(token, &ledgerEntry{})
	return nil, nil
}

func (l *Ledger) complete(token string, o Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Add(token, &ledgerEntry{done: true, outcome: o})
}

func (l *Ledger) release(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Remove(token)
}
