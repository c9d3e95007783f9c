package postgres

import (
	"context"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/postgres/generated"
	"github.com/iho/ledgerbook/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Create records a transaction. ID and CreatedAt are assigned by the database.
func (r *TransactionRepository) Create(ctx context.Context, uow usecase.UnitOfWork, tx *domain.Transaction) error {
	row, err := queriesFor(uow).CreateTransaction(ctx, generated.CreateTransactionParams{
		Reference:   tx.Reference,
		FromAccount: tx.FromAccount,
		ToAccount:   tx.ToAccount,
		Amount:      decimalToNumeric(tx.Amount),
	})
	if err != nil {
		return translateError(err)
	}

	tx.ID = row.ID
	tx.CreatedAt = row.CreatedAt.Time

	return nil
}

// List lists transactions newest first.
func (r *TransactionRepository) List(ctx context.Context, uow usecase.UnitOfWork, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	queries := queriesFor(uow)

	var (
		rows []generated.Transaction
		err  error
	)
	if filter.AccountNumber == "" {
		rows, err = queries.ListTransactions(ctx, generated.ListTransactionsParams{
			Limit:  pageLimit(filter.Limit),
			Offset: pageOffset(filter.Offset),
		})
	} else {
		rows, err = queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
			AccountNumber: filter.AccountNumber,
			Limit:         pageLimit(filter.Limit),
			Offset:        pageOffset(filter.Offset),
		})
	}
	if err != nil {
		return nil, translateError(err)
	}

	txs := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, rowToTransaction(row))
	}

	return txs, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.ID,
		Reference:   row.Reference,
		FromAccount: row.FromAccount,
		ToAccount:   row.ToAccount,
		Amount:      numericToDecimal(row.Amount),
		CreatedAt:   row.CreatedAt.Time,
	}
}
