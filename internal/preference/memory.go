package preference

import (
	"context"
	"sync"

	"amazetimes/internal/i18n"
)

// MemoryPersister keeps the value in memory. It survives Store restarts
// within one process, which is what tests use to simulate a reload.
type MemoryPersister struct {
	mu    sync.Mutex
	value string
}

// NewMemoryPersister returns a persister pre-loaded with raw ("" for none).
func NewMemoryPersister(raw string) *MemoryPersister {
	return &MemoryPersister{value: raw}
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, lang i18n.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = string(lang)
	return nil
}
