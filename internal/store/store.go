// Package store persists articles, parties and orders in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"stock-orders/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes mapped onto core sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// dbError wraps err with what, mapping missing rows to core.ErrNotFound and
// constraint violations to core.ErrConflict, core.ErrNotFound or a
// core.ValidationError.
func dbError(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", what, core.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: referenced row does not exist: %w", what, core.ErrNotFound)
		case pgCheckViolation:
			return &core.ValidationError{Problems: []string{fmt.Sprintf("%s: value rejected by %s", what, pgErr.ConstraintName)}}
		}
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}
