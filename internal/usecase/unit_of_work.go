package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/ledgerbook/internal/domain"
)

// runInUnit executes fn inside one unit of work. The unit is committed when fn
// returns nil and rolled back otherwise.
func runInUnit(ctx context.Context, uowManager UnitOfWorkManager, mode AccessMode, fn func(ctx context.Context, uow UnitOfWork) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	uow, err := uowManager.Begin(ctx, mode)
	if err != nil {
		return storeFailure(err)
	}
	defer uow.Rollback(ctx)

	if err := fn(ctx, uow); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return storeFailure(err)
	}

	return nil
}

// storeFailure keeps classified store errors and wraps anything else as a
// failed commit.
func storeFailure(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrCommitFailed),
		errors.Is(err, domain.ErrConstraintViolation):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
	}
}
