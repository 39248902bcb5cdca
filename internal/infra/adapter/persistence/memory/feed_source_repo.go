package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
)

// FeedSourceRepo holds the feed sources crawled by the worker in memory mode.
type FeedSourceRepo struct {
	mu      sync.Mutex
	sources map[string]*entity.FeedSource
}

// NewFeedSourceRepo returns a repository holding copies of sources.
func NewFeedSourceRepo(sources ...*entity.FeedSource) *FeedSourceRepo {
	r := &FeedSourceRepo{sources: make(map[string]*entity.FeedSource, len(sources))}
	for _, s := range sources {
		cp := *s
		r.sources[s.ID] = &cp
	}
	return r
}

var _ repository.FeedSourceRepository = (*FeedSourceRepo)(nil)

// ListActive returns active sources ordered by name.
func (r *FeedSourceRepo) ListActive(_ context.Context) ([]*entity.FeedSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.FeedSource, 0, len(r.sources))
	for _, s := range r.sources {
		if s.IsActive {
			cp := *s
			cp.LastFetchedAt = clonePtr(s.LastFetchedAt)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *FeedSourceRepo) TouchFetchedAt(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("TouchFetchedAt: %w", entity.ErrNotFound)
	}
	s.LastFetchedAt = &t
	return nil
}
