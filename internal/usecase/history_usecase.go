package usecase

import (
	"context"
	"strings"

	"github.com/iho/ledgerbook/internal/domain"
)

// HistoryUseCase reads committed transaction records.
type HistoryUseCase struct {
	uowManager      UnitOfWorkManager
	transactionRepo TransactionRepository
	retrier         Retrier
}

// NewHistoryUseCase creates a new HistoryUseCase. Retrier may be nil.
func NewHistoryUseCase(uowManager UnitOfWorkManager, transactionRepo TransactionRepository, retrier Retrier) *HistoryUseCase {
	return &HistoryUseCase{
		uowManager:      uowManager,
		transactionRepo: transactionRepo,
		retrier:         retrier,
	}
}

// Page limits a history listing. The zero Page returns everything.
type Page struct {
	Limit  int
	Offset int
}

// ListAll lists all transactions, newest first.
func (uc *HistoryUseCase) ListAll(ctx context.Context, page Page) ([]*domain.Transaction, error) {
	return uc.list(ctx, "", page)
}

// ListForAccount lists transactions where the account is source or destination,
// newest first. An unknown account yields an empty list.
func (uc *HistoryUseCase) ListForAccount(ctx context.Context, accountNumber string, page Page) ([]*domain.Transaction, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, domain.ErrInvalidAccountNumber
	}

	return uc.list(ctx, accountNumber, page)
}

func (uc *HistoryUseCase) list(ctx context.Context, accountNumber string, page Page) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(page.Limit, page.Offset)
	filter := TransactionFilter{
		AccountNumber: accountNumber,
		Limit:         limit,
		Offset:        offset,
	}

	var txs []*domain.Transaction
	err := readOnly(ctx, uc.uowManager, uc.retrier, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		txs, err = uc.transactionRepo.List(ctx, uow, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	return txs, nil
}

// readOnly runs fn in a read-only unit, retrying conflicts when a retrier is set.
// Retrying reads is always safe.
func readOnly(ctx context.Context, uowManager UnitOfWorkManager, retrier Retrier, fn func(ctx context.Context, uow UnitOfWork) error) error {
	run := func() error {
		return runInUnit(ctx, uowManager, ReadOnly, fn)
	}

	if retrier == nil {
		return run()
	}

	return retrier.Retry(ctx, run)
}
