package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"amazetimes/internal/domain/entity"
)

// SQLSTATE codes the article repository translates.
const (
	codeInvalidTextRepresentation = "22P02"
	codeForeignKeyViolation       = "23503"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isMalformedID reports whether Postgres rejected an id as invalid uuid text.
// No row can carry such an id, so callers treat it as a missing record.
func isMalformedID(err error) bool {
	return sqlState(err) == codeInvalidTextRepresentation
}

// mapWriteError turns a rejected party reference into the validation error
// the memory adapter reports. news.party_id is the only foreign key on news,
// and the article id itself is always a generated uuid on insert.
func mapWriteError(err error, articleID string) error {
	switch sqlState(err) {
	case codeForeignKeyViolation:
		return entity.UnknownPartyError()
	case codeInvalidTextRepresentation:
		if _, perr := uuid.Parse(articleID); perr != nil {
			return entity.ErrNotFound
		}
		return entity.UnknownPartyError()
	}
	return err
}
