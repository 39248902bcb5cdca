// Package storage opens the repositories selected by STORAGE_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"amazetimes/internal/infra/adapter/persistence/memory"
	"amazetimes/internal/infra/adapter/persistence/postgres"
	"amazetimes/internal/infra/db"
	"amazetimes/internal/repository"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store bundles the repositories of one backend. DB is nil for memory.
type Store struct {
	Driver   string
	DB       *sql.DB
	Articles repository.ArticleRepository
	Parties  repository.PartyRepository
	Sources  repository.FeedSourceRepository
}

// Options selects and prepares a backend.
type Options struct {
	Driver string
	DSN    string
	// Migrate applies the schema and seeds on open.
	Migrate bool
	Pool    db.ConnectionConfig
}

// Open returns a ready Store. The memory backend is seeded with the default parties.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		parties := memory.NewPartyRepo(db.DefaultParties()...)
		return &Store{
			Driver:   DriverMemory,
			Articles: memory.NewArticleRepo(parties),
			Parties:  parties,
			Sources:  memory.NewFeedSourceRepo(),
		}, nil
	case DriverPostgres:
		conn, err := db.Open(ctx, opts.DSN, opts.Pool)
		if err != nil {
			return nil, err
		}
		if opts.Migrate {
			if err := db.MigrateUp(ctx, conn); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return &Store{
			Driver:   DriverPostgres,
			DB:       conn,
			Articles: postgres.NewArticleRepo(conn),
			Parties:  postgres.NewPartyRepo(conn),
			Sources:  postgres.NewFeedSourceRepo(conn),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// Close releases the database pool, if any.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
