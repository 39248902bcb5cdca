package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
)

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s rowScanner) (*entity.Article, error) {
	var (
		a                                    entity.Article
		category, status, source             string
		partyID, sourceURL, featuredImage    sql.NullString
		publishedAt                          sql.NullTime
		pID, pSlug, pNameEN, pNameTA, pColor sql.NullString
	)
	if err := s.Scan(
		&a.ID, &a.TitleEN, &a.TitleTA, &a.ContentEN, &a.ContentTA,
		&a.Slug, &category, &partyID, &a.IsBreaking, &a.IsFeatured,
		&status, &source, &sourceURL, &featuredImage,
		&publishedAt, &a.CreatedAt, &a.UpdatedAt,
		&pID, &pSlug, &pNameEN, &pNameTA, &pColor,
	); err != nil {
		return nil, err
	}

	a.Category = entity.Category(category)
	a.Status = entity.Status(status)
	a.Source = entity.Source(source)
	a.PartyID = nullString(partyID)
	a.SourceURL = nullString(sourceURL)
	a.FeaturedImage = nullString(featuredImage)
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	if pID.Valid {
		a.Party = &entity.PartySummary{
			ID:     pID.String,
			Slug:   pSlug.String,
			NameEN: pNameEN.String,
			NameTA: pNameTA.String,
			Color:  pColor.String,
		}
	}
	return &a, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (repo *ArticleRepo) List(ctx context.Context, filter repository.ArticleFilter) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.Select(filter)
	if err != nil {
		return nil, fmt.Errorf("List: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	capacity := filter.Limit
	if capacity <= 0 {
		capacity = 50
	}
	articles := make([]*entity.Article, 0, capacity)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Get returns (nil, nil) for a missing id, including one Postgres rejects as
// malformed uuid text.
func (repo *ArticleRepo) Get(ctx context.Context, id string) (*entity.Article, error) {
	query, args, err := repo.queryBuilder.SelectByID(id)
	if err != nil {
		return nil, fmt.Errorf("Get: build: %w", err)
	}

	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	query, args, err := psql.Insert("news").
		Columns(
			"id", "title_en", "title_ta", "content_en", "content_ta",
			"slug", "category", "party_id", "is_breaking", "is_featured",
			"status", "source", "source_url", "featured_image",
			"published_at", "created_at", "updated_at",
		).
		Values(
			article.ID, article.TitleEN, article.TitleTA, article.ContentEN, article.ContentTA,
			article.Slug, string(article.Category), article.PartyID, article.IsBreaking, article.IsFeatured,
			string(article.Status), string(article.Source), article.SourceURL, article.FeaturedImage,
			article.PublishedAt, article.CreatedAt, article.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("Create: build: %w", err)
	}

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("Create: %w", mapWriteError(err, article.ID))
	}
	return nil
}

// Update never touches slug, source or created_at. A malformed id is
// reported as entity.ErrNotFound and an unknown party as a validation error.
func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	query, args, err := psql.Update("news").
		Set("title_en", article.TitleEN).
		Set("title_ta", article.TitleTA).
		Set("content_en", article.ContentEN).
		Set("content_ta", article.ContentTA).
		Set("category", string(article.Category)).
		Set("party_id", article.PartyID).
		Set("is_breaking", article.IsBreaking).
		Set("is_featured", article.IsFeatured).
		Set("status", string(article.Status)).
		Set("featured_image", article.FeaturedImage).
		Set("published_at", article.PublishedAt).
		Set("updated_at", article.UpdatedAt).
		Where(sq.Eq{"id": article.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("Update: build: %w", err)
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Update: %w", mapWriteError(err, article.ID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM news WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id); err != nil {
		if isMalformedID(err) {
			return nil
		}
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// ExistsBySourceURLBatch はバッチで source_url の存在チェックを行い、N+1問題を解消する
func (repo *ArticleRepo) ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	query, args, err := psql.Select("source_url").
		From("news").
		Where(sq.Eq{"source_url": urls}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ExistsBySourceURLBatch: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsBySourceURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("ExistsBySourceURLBatch: Scan: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsBySourceURLBatch: rows.Err: %w", err)
	}
	return result, nil
}
