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

var partyColumns = []string{
	"id", "name_en", "name_ta", "description_en", "description_ta",
	"color", "logo_url", "founded_year", "slug", "created_at", "updated_at",
}

type PartyRepo struct {
	db *sql.DB
}

func NewPartyRepo(db *sql.DB) repository.PartyRepository {
	return &PartyRepo{db: db}
}

func scanParty(s rowScanner) (*entity.Party, error) {
	var (
		p                       entity.Party
		descEN, descTA, logoURL sql.NullString
		founded                 sql.NullInt32
	)
	if err := s.Scan(&p.ID, &p.NameEN, &p.NameTA, &descEN, &descTA,
		&p.Color, &logoURL, &founded, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.DescriptionEN = nullString(descEN)
	p.DescriptionTA = nullString(descTA)
	p.LogoURL = nullString(logoURL)
	if founded.Valid {
		y := int(founded.Int32)
		p.FoundedYear = &y
	}
	return &p, nil
}

func (repo *PartyRepo) List(ctx context.Context) ([]*entity.Party, error) {
	query, args, err := psql.Select(partyColumns...).
		From("parties").
		OrderBy("name_en ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("List: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	parties := make([]*entity.Party, 0, 16)
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (repo *PartyRepo) GetBySlug(ctx context.Context, slug string) (*entity.Party, error) {
	query, args, err := psql.Select(partyColumns...).
		From("parties").
		Where(sq.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: build: %w", err)
	}

	p, err := scanParty(repo.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySlug: %w", err)
	}
	return p, nil
}
