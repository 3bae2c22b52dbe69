package postgresrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ingresso-go/internal/repository"
)

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return false
}

// wrapDBErr maps common DB errors to repository-level errors and wraps them
// with the provided operation name. Missing tables/columns are reported as
// ErrSchemaMissing so callers can tell "run the migrations" apart from
// "database unreachable".
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, repository.ErrConflict)
		case "42P01", "42703": // undefined_table, undefined_column
			return fmt.Errorf("%s: %w: %s", op, repository.ErrSchemaMissing, pge.Message)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
