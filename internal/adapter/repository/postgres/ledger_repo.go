package postgres

import (
	"context"

	"github.com/iho/ledgerbook/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct{}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

// Totals sums balances and opening balances of the live accounts, and the
// net amount recorded between them and accounts that no longer exist.
func (r *LedgerRepository) Totals(ctx context.Context, uow usecase.UnitOfWork) (usecase.LedgerTotals, error) {
	result, err := queriesFor(uow).LedgerTotals(ctx)
	if err != nil {
		return usecase.LedgerTotals{}, translateError(err)
	}

	return usecase.LedgerTotals{
		Balance:      numericToDecimal(result.TotalBalance),
		Opening:      numericToDecimal(result.TotalOpening),
		NetTransfers: numericToDecimal(result.NetTransfers),
	}, nil
}

// Turnover sums the recorded debits and credits of one account.
func (r *LedgerRepository) Turnover(ctx context.Context, uow usecase.UnitOfWork, accountNumber string) (usecase.AccountTurnover, error) {
	result, err := queriesFor(uow).AccountTurnover(ctx, accountNumber)
	if err != nil {
		return usecase.AccountTurnover{}, translateError(err)
	}

	return usecase.AccountTurnover{
		Debits:  numericToDecimal(result.Debits),
		Credits: numericToDecimal(result.Credits),
	}, nil
}
