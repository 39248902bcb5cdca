package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
)

type FeedSourceRepo struct {
	db *sql.DB
}

func NewFeedSourceRepo(db *sql.DB) repository.FeedSourceRepository {
	return &FeedSourceRepo{db: db}
}

func (repo *FeedSourceRepo) ListActive(ctx context.Context) ([]*entity.FeedSource, error) {
	query, args, err := psql.Select("id", "name", "url", "language", "is_active", "last_fetched_at", "created_at").
		From("rss_sources").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListActive: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []*entity.FeedSource
	for rows.Next() {
		var (
			s           entity.FeedSource
			lang        sql.NullString
			lastFetched sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.URL, &lang, &s.IsActive, &lastFetched, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListActive: Scan: %w", err)
		}
		s.Language = lang.String
		if lastFetched.Valid {
			t := lastFetched.Time
			s.LastFetchedAt = &t
		}
		sources = append(sources, &s)
	}
	return sources, rows.Err()
}

func (repo *FeedSourceRepo) TouchFetchedAt(ctx context.Context, id string, t time.Time) error {
	const query = `UPDATE rss_sources SET last_fetched_at = $1 WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, t, id); err != nil {
		return fmt.Errorf("TouchFetchedAt: %w", err)
	}
	return nil
}
