package repository

import (
	"context"

	"amazetimes/internal/domain/entity"
)

// PartyRepository reads parties. There is no write path.
type PartyRepository interface {
	// List returns every party ordered by English name.
	List(ctx context.Context) ([]*entity.Party, error)
	// GetBySlug returns (nil, nil) when no party has the slug.
	GetBySlug(ctx context.Context, slug string) (*entity.Party, error)
}
