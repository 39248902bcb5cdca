package repository

import (
	"context"
	"time"

	"amazetimes/internal/domain/entity"
)

// FeedSourceRepository reads the RSS sources crawled by the ingestion worker.
type FeedSourceRepository interface {
	ListActive(ctx context.Context) ([]*entity.FeedSource, error)
	TouchFetchedAt(ctx context.Context, id string, t time.Time) error
}
