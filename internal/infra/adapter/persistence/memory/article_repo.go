// Package memory provides in-process repository implementations.
// They follow the same visibility, ordering and party reference rules as the
// PostgreSQL adapter and back the development mode and end-to-end tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
)

// ArticleRepo stores articles in a map guarded by a RWMutex.
// Party summaries are joined from the PartyRepo at read time, like the SQL LEFT JOIN.
type ArticleRepo struct {
	mu       sync.RWMutex
	articles map[string]*entity.Article
	parties  *PartyRepo
}

// NewArticleRepo returns an empty repository. parties may be nil, in which
// case party ids are stored unchecked.
func NewArticleRepo(parties *PartyRepo) *ArticleRepo {
	return &ArticleRepo{
		articles: make(map[string]*entity.Article),
		parties:  parties,
	}
}

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

func (r *ArticleRepo) List(_ context.Context, filter repository.ArticleFilter) ([]*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if matches(a, filter) {
			out = append(out, r.withParty(a))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], filter.Order)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(a *entity.Article, f repository.ArticleFilter) bool {
	switch {
	case f.Status != "" && a.Status != f.Status:
		return false
	case f.Slug != "" && a.Slug != f.Slug:
		return false
	case f.PartyID != "" && (a.PartyID == nil || *a.PartyID != f.PartyID):
		return false
	case f.ExcludeID != "" && a.ID == f.ExcludeID:
		return false
	case f.BreakingOnly && !a.IsBreaking:
		return false
	case f.FeaturedOnly && !a.IsFeatured:
		return false
	}
	return true
}

// less mirrors the SQL ORDER BY clauses of the postgres adapter.
func less(a, b *entity.Article, order repository.ArticleOrder) bool {
	if order == repository.OrderPublishedDesc {
		switch {
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// withParty returns a copy carrying the current party summary.
func (r *ArticleRepo) withParty(a *entity.Article) *entity.Article {
	cp := clone(a)
	cp.Party = nil
	if cp.PartyID != nil && r.parties != nil {
		if p := r.parties.byID(*cp.PartyID); p != nil {
			cp.Party = p.Summary()
		}
	}
	return cp
}

func clone(a *entity.Article) *entity.Article {
	cp := *a
	cp.PartyID = clonePtr(a.PartyID)
	cp.SourceURL = clonePtr(a.SourceURL)
	cp.FeaturedImage = clonePtr(a.FeaturedImage)
	cp.PublishedAt = clonePtr(a.PublishedAt)
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (r *ArticleRepo) Get(_ context.Context, id string) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	return r.withParty(a), nil
}

func (r *ArticleRepo) Create(_ context.Context, article *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[article.ID]; exists {
		return fmt.Errorf("Create: duplicate id %q", article.ID)
	}
	// slug の一意性はストレージ層で保証する
	for _, a := range r.articles {
		if a.Slug == article.Slug {
			return fmt.Errorf("Create: duplicate slug %q", article.Slug)
		}
	}
	if err := r.checkParty(article.PartyID); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	r.articles[article.ID] = clone(article)
	return nil
}

// checkParty mirrors the foreign key on news.party_id.
func (r *ArticleRepo) checkParty(id *string) error {
	if id == nil || r.parties == nil {
		return nil
	}
	if r.parties.byID(*id) == nil {
		return entity.UnknownPartyError()
	}
	return nil
}

func (r *ArticleRepo) Update(_ context.Context, article *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.articles[article.ID]
	if !ok {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	if err := r.checkParty(article.PartyID); err != nil {
		return fmt.Errorf("Update: %w", err)
	}

	next := clone(article)
	next.Slug = cur.Slug
	next.Source = cur.Source
	next.SourceURL = clonePtr(cur.SourceURL)
	next.CreatedAt = cur.CreatedAt
	r.articles[article.ID] = next
	return nil
}

func (r *ArticleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, id)
	return nil
}

func (r *ArticleRepo) ExistsBySourceURLBatch(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		want[u] = struct{}{}
	}
	result := make(map[string]bool)
	for _, a := range r.articles {
		if a.SourceURL == nil {
			continue
		}
		if _, ok := want[*a.SourceURL]; ok {
			result[*a.SourceURL] = true
		}
	}
	return result, nil
}
