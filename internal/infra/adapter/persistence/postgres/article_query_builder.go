// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	sq "github.com/Masterminds/squirrel"

	"amazetimes/internal/repository"
)

// psql builds statements with PostgreSQL numbered placeholders ($1, $2, ...).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// articleColumns is the projection shared by every article read.
// The party columns come from a LEFT JOIN and are NULL for articles without a party.
var articleColumns = []string{
	"n.id", "n.title_en", "n.title_ta", "n.content_en", "n.content_ta",
	"n.slug", "n.category", "n.party_id", "n.is_breaking", "n.is_featured",
	"n.status", "n.source", "n.source_url", "n.featured_image",
	"n.published_at", "n.created_at", "n.updated_at",
	"p.id", "p.slug", "p.name_en", "p.name_ta", "p.color",
}

// ArticleQueryBuilder turns an ArticleFilter into a SELECT statement.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// base returns the SELECT ... FROM ... JOIN part without conditions.
func (qb *ArticleQueryBuilder) base() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("news n").
		LeftJoin("parties p ON p.id = n.party_id")
}

// Select builds the listing query for filter.
// Conditions are emitted in a fixed order so that placeholder numbering is stable.
func (qb *ArticleQueryBuilder) Select(filter repository.ArticleFilter) (string, []interface{}, error) {
	q := qb.base()

	if filter.Status != "" {
		q = q.Where(sq.Eq{"n.status": string(filter.Status)})
	}
	if filter.Slug != "" {
		q = q.Where(sq.Eq{"n.slug": filter.Slug})
	}
	if filter.PartyID != "" {
		q = q.Where(sq.Eq{"n.party_id": filter.PartyID})
	}
	if filter.ExcludeID != "" {
		q = q.Where(sq.NotEq{"n.id": filter.ExcludeID})
	}
	if filter.BreakingOnly {
		q = q.Where(sq.Eq{"n.is_breaking": true})
	}
	if filter.FeaturedOnly {
		q = q.Where(sq.Eq{"n.is_featured": true})
	}

	switch filter.Order {
	case repository.OrderCreatedDesc:
		q = q.OrderBy("n.created_at DESC", "n.id DESC")
	default:
		// 同一 published_at の場合は作成日時・ID で決定的に並べる
		q = q.OrderBy("n.published_at DESC NULLS LAST", "n.created_at DESC", "n.id DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q.ToSql()
}

// SelectByID builds the single-row lookup used by Get.
func (qb *ArticleQueryBuilder) SelectByID(id string) (string, []interface{}, error) {
	return qb.base().Where(sq.Eq{"n.id": id}).Limit(1).ToSql()
}
