package db

import (
	"context"
	"database/sql"
	"fmt"

	"amazetimes/internal/domain/entity"
)

func intPtr(v int) *int { return &v }

// DefaultParties is the party table the site ships with.
// The same records seed PostgreSQL and the in-memory store.
func DefaultParties() []*entity.Party {
	return []*entity.Party{
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0001", Slug: "dmk", NameEN: "DMK", NameTA: "திமுக", Color: "#E31E24", FoundedYear: intPtr(1949)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0002", Slug: "aiadmk", NameEN: "AIADMK", NameTA: "அதிமுக", Color: "#00A651", FoundedYear: intPtr(1972)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0003", Slug: "bjp", NameEN: "BJP", NameTA: "பாஜக", Color: "#FF9933", FoundedYear: intPtr(1980)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0004", Slug: "congress", NameEN: "Congress", NameTA: "காங்கிரஸ்", Color: "#19AAED", FoundedYear: intPtr(1885)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0005", Slug: "pmk", NameEN: "PMK", NameTA: "பாமக", Color: "#FFD700", FoundedYear: intPtr(1989)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0006", Slug: "ntk", NameEN: "NTK", NameTA: "நாம் தமிழர் கட்சி", Color: "#B22222", FoundedYear: intPtr(2010)},
		{ID: "0a6c2a8e-6f0c-4d0e-9a37-1f1d6f0c0007", Slug: "tvk", NameEN: "TVK", NameTA: "தவெக", Color: "#8B0000", FoundedYear: intPtr(2024)},
	}
}

const insertPartySQL = `
INSERT INTO parties (id, slug, name_en, name_ta, color, founded_year)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (slug) DO NOTHING`

// SeedParties inserts DefaultParties, skipping slugs that already exist.
func SeedParties(ctx context.Context, db *sql.DB) error {
	for _, p := range DefaultParties() {
		if _, err := db.ExecContext(ctx, insertPartySQL,
			p.ID, p.Slug, p.NameEN, p.NameTA, p.Color, p.FoundedYear); err != nil {
			return fmt.Errorf("seed party %s: %w", p.Slug, err)
		}
	}
	return nil
}
