// Package app wires the ledger use cases onto the Postgres repositories.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/ledgerbook/internal/adapter/repository/postgres"
	"github.com/iho/ledgerbook/internal/infrastructure/config"
	"github.com/iho/ledgerbook/internal/infrastructure/postgres"
	"github.com/iho/ledgerbook/internal/usecase"
)

// Options tunes the use cases.
type Options struct {
	Logger         zerolog.Logger
	Metrics        usecase.PostingMetrics
	RetryConflicts bool
}

// Ledger groups the use cases of one store.
type Ledger struct {
	Registry       *usecase.RegistryUseCase
	Posting        *usecase.PostingUseCase
	History        *usecase.HistoryUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Exchange       *usecase.ExchangeUseCase
}

// New builds the use cases on top of uowManager.
func New(uowManager usecase.UnitOfWorkManager, opts Options) *Ledger {
	clientRepo := postgresRepo.NewClientRepository()
	accountRepo := postgresRepo.NewAccountRepository()
	transactionRepo := postgresRepo.NewTransactionRepository()
	ledgerRepo := postgresRepo.NewLedgerRepository()
	retrier := postgresRepo.NewRetrier(opts.Logger)

	postingOpts := []usecase.PostingOption{usecase.WithPostingLogger(opts.Logger)}
	if opts.Metrics != nil {
		postingOpts = append(postingOpts, usecase.WithPostingMetrics(opts.Metrics))
	}
	if opts.RetryConflicts {
		postingOpts = append(postingOpts, usecase.WithConflictRetry(retrier))
	}

	return &Ledger{
		Registry:       usecase.NewRegistryUseCase(uowManager, clientRepo, accountRepo, retrier),
		Posting:        usecase.NewPostingUseCase(uowManager, accountRepo, transactionRepo, postgresRepo.NewULIDGenerator(), postingOpts...),
		History:        usecase.NewHistoryUseCase(uowManager, transactionRepo, retrier),
		Reconciliation: usecase.NewReconciliationUseCase(uowManager, accountRepo, ledgerRepo),
		Exchange:       usecase.NewExchangeUseCase(uowManager, clientRepo, accountRepo, opts.Logger),
	}
}

// Connect migrates the schema when configured to, opens the pool and builds
// the ledger. Callers close the returned pool.
func Connect(ctx context.Context, cfg *config.Config, opts Options) (*Ledger, *pgxpool.Pool, error) {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, opts.Logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return New(postgresRepo.NewTxManager(pool), opts), pool, nil
}
