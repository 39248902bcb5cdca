package repository

import (
	"context"

	"amazetimes/internal/domain/entity"
)

// ArticleOrder selects the ordering of a listing.
type ArticleOrder int

const (
	// OrderPublishedDesc is the public "latest" ordering:
	// published_at DESC (NULLs last), then created_at DESC, then id DESC.
	OrderPublishedDesc ArticleOrder = iota
	// OrderCreatedDesc is the admin listing ordering: created_at DESC, then id DESC.
	OrderCreatedDesc
)

// ArticleFilter narrows an article listing. Zero values mean "no constraint".
type ArticleFilter struct {
	Status       entity.Status
	Slug         string
	PartyID      string
	ExcludeID    string
	BreakingOnly bool
	FeaturedOnly bool
	Order        ArticleOrder
	Limit        int
}

// Published returns a filter restricted to published articles.
func Published(limit int) ArticleFilter {
	return ArticleFilter{Status: entity.StatusPublished, Limit: limit}
}

// ArticleRepository reads and writes articles. Every listed article carries
// its party summary when it references a party.
type ArticleRepository interface {
	List(ctx context.Context, filter ArticleFilter) ([]*entity.Article, error)
	// Get returns (nil, nil) when no article has the id, whatever its status.
	Get(ctx context.Context, id string) (*entity.Article, error)
	Create(ctx context.Context, article *entity.Article) error
	// Update rewrites every editable column. It returns entity.ErrNotFound
	// when the id does not exist. Slug and source are never written.
	Update(ctx context.Context, article *entity.Article) error
	// Delete removes the row. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// ExistsBySourceURLBatch reports which of urls are already stored as source_url.
	ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
}
