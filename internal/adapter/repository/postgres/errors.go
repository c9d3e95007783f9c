package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/ledgerbook/internal/domain"
)

// PostgreSQL error codes translated into domain errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrNotNullViolation     = "23502"
	pgErrForeignKeyViolation  = "23503"
	pgErrUniqueViolation      = "23505"
	pgErrCheckViolation       = "23514"
)

// translateError maps PostgreSQL errors onto domain errors. The original
// error stays in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case pgErrNotNullViolation, pgErrForeignKeyViolation, pgErrUniqueViolation, pgErrCheckViolation:
		if pgErr.ConstraintName != "" {
			return fmt.Errorf("%w (%s): %w", domain.ErrConstraintViolation, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrConstraintViolation, err)
	default:
		return err
	}
}
