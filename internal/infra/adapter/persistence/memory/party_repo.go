package memory

import (
	"context"
	"sort"
	"sync"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
)

// PartyRepo is a read-mostly party table.
type PartyRepo struct {
	mu      sync.RWMutex
	parties map[string]*entity.Party
}

// NewPartyRepo returns a repository holding the given parties.
func NewPartyRepo(parties ...*entity.Party) *PartyRepo {
	r := &PartyRepo{parties: make(map[string]*entity.Party, len(parties))}
	for _, p := range parties {
		r.Put(p)
	}
	return r
}

var _ repository.PartyRepository = (*PartyRepo)(nil)

// Put inserts or replaces a party. It exists for seeding only.
func (r *PartyRepo) Put(p *entity.Party) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.parties[p.ID] = &cp
}

func (r *PartyRepo) List(_ context.Context) ([]*entity.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Party, 0, len(r.parties))
	for _, p := range r.parties {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameEN != out[j].NameEN {
			return out[i].NameEN < out[j].NameEN
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PartyRepo) GetBySlug(_ context.Context, slug string) (*entity.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parties {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PartyRepo) byID(id string) *entity.Party {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parties[id]
}
