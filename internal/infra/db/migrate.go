package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seeds/rss_sources.sql
var seedRSSSourcesSQL string

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`
CREATE TABLE IF NOT EXISTS parties (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name_en         TEXT NOT NULL,
    name_ta         TEXT NOT NULL,
    description_en  TEXT,
    description_ta  TEXT,
    color           TEXT NOT NULL DEFAULT '#6B7280',
    logo_url        TEXT,
    founded_year    INTEGER,
    slug            TEXT NOT NULL UNIQUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`
CREATE TABLE IF NOT EXISTS news (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title_en        TEXT NOT NULL,
    title_ta        TEXT NOT NULL,
    content_en      TEXT NOT NULL,
    content_ta      TEXT NOT NULL,
    slug            TEXT NOT NULL UNIQUE,
    category        TEXT NOT NULL DEFAULT 'general',
    party_id        UUID REFERENCES parties(id) ON DELETE SET NULL,
    is_breaking     BOOLEAN NOT NULL DEFAULT FALSE,
    is_featured     BOOLEAN NOT NULL DEFAULT FALSE,
    status          TEXT NOT NULL DEFAULT 'published' CHECK (status IN ('published', 'draft')),
    source          TEXT NOT NULL DEFAULT 'manual' CHECK (source IN ('manual', 'auto')),
    source_url      TEXT,
    featured_image  TEXT,
    published_at    TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`
CREATE TABLE IF NOT EXISTS admin_users (
    user_id     TEXT PRIMARY KEY,
    email       TEXT NOT NULL,
    name        TEXT,
    role        TEXT NOT NULL DEFAULT 'admin',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`
CREATE TABLE IF NOT EXISTS rss_sources (
    id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name             TEXT NOT NULL,
    url              TEXT NOT NULL UNIQUE,
    language         TEXT DEFAULT 'en',
    is_active        BOOLEAN DEFAULT TRUE,
    last_fetched_at  TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// indexes back the public listing queries.
var indexes = []string{
	// 公開記事の新着順 (published_at DESC, created_at DESC, id DESC)
	`CREATE INDEX IF NOT EXISTS idx_news_published ON news(status, published_at DESC NULLS LAST, created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_party ON news(party_id, status, published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_breaking ON news(published_at DESC) WHERE is_breaking AND status = 'published'`,
	`CREATE INDEX IF NOT EXISTS idx_news_created ON news(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_source_url ON news(source_url) WHERE source_url IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_rss_sources_active ON rss_sources(is_active) WHERE is_active = TRUE`,
}

// MigrateUp creates the schema, indexes and seed rows. Every statement is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("migrate index: %w", err)
		}
	}

	// シードデータの投入(重複は自動的にスキップ)
	if err := SeedParties(ctx, db); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, seedRSSSourcesSQL); err != nil {
		return fmt.Errorf("seed rss sources: %w", err)
	}
	return nil
}

// MigrateDown drops every table created by MigrateUp.
// Use with caution: this will delete all data.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS news`,
		`DROP TABLE IF EXISTS parties`,
		`DROP TABLE IF EXISTS admin_users`,
		`DROP TABLE IF EXISTS rss_sources`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	}
	return nil
}

// EnsureAdminUser records the configured administrator for audit purposes.
func EnsureAdminUser(ctx context.Context, db *sql.DB, userID, email string) error {
	const query = `
INSERT INTO admin_users (user_id, email, role)
VALUES ($1, $2, 'admin')
ON CONFLICT (user_id) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, userID, email); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	return nil
}
