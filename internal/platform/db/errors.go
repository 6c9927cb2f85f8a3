package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsConflict reports whether err is a write-write collision: a unique
// violation (SQLSTATE 23505) or a serialization failure (40001). Both
// mean another transaction won the same row first, so an immediate
// retry can succeed.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "40001"
}
