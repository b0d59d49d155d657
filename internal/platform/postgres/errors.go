package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stefanvasilev2002/intellicard/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"
)

// MapError maps a database error to a store error.
//
// sql.ErrNoRows becomes notFound (or store.ErrNotFound when notFound is nil),
// constraint violations become store.ErrDuplicate or store.ErrInvalidEntity,
// and context errors are returned unchanged. Anything else wraps
// store.ErrInternal. The driver error text is kept for logging only; callers
// must not send it to clients.
func MapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		if notFound == nil {
			notFound = store.ErrNotFound
		}
		return notFound
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s)",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
			)
		}
	}

	return fmt.Errorf("%w: %v", store.ErrInternal, err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected examines the number of rows affected by an UPDATE or
// DELETE. If no rows were affected, it returns notFound.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", store.ErrInternal)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", store.ErrInternal, err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
