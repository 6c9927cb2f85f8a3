package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsConflictUniqueViolation(t *testing.T) {
	err := fmt.Errorf("invoicing: create: %w", &pgconn.PgError{Code: "23505"})
	require.True(t, IsConflict(err))
}

func TestIsConflictSerializationFailure(t *testing.T) {
	// The loser of two concurrent same-owner creates can surface 40001
	// instead of a duplicate key; both are retryable collisions.
	err := fmt.Errorf("invoicing: next sequence: %w", &pgconn.PgError{Code: "40001"})
	require.True(t, IsConflict(err))
}

func TestIsConflictIgnoresOtherErrors(t *testing.T) {
	require.False(t, IsConflict(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsConflict(errors.New("connection refused")))
	require.False(t, IsConflict(nil))
}
