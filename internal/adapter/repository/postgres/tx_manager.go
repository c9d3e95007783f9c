package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

type pgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.UnitOfWorkManager.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// txOptions returns SERIALIZABLE for read-write units and a read-only
// REPEATABLE READ snapshot for reads.
func txOptions(mode usecase.AccessMode) pgx.TxOptions {
	if mode == usecase.ReadOnly {
		return pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadOnly,
		}
	}

	return pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context, mode usecase.AccessMode) (usecase.UnitOfWork, error) {
	tx, err := m.pool.BeginTx(ctx, txOptions(mode))
	if err != nil {
		return nil, translateError(err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction. A failure that is not a conflict or a
// constraint violation is reported as domain.ErrCommitFailed.
func (t *Tx) Commit(ctx context.Context) error {
	err := translateError(t.tx.Commit(ctx))
	if err == nil || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrConstraintViolation) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
}

// Rollback rolls back the transaction. Rolling back a finished transaction is
// a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
