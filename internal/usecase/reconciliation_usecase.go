package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when balances do not add up to opening
	// balances plus recorded turnover.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match opening balances and turnover")
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	uowManager  UnitOfWorkManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	uowManager UnitOfWorkManager,
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		uowManager:  uowManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountNumber     string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes an account balance from its opening balance
// and its transaction history and compares it with the recorded balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountNumber string) (*ReconciliationResult, error) {
	var result *ReconciliationResult

	err := runInUnit(ctx, uc.uowManager, ReadOnly, func(ctx context.Context, uow UnitOfWork) error {
		account, err := uc.accountRepo.GetByNumber(ctx, uow, accountNumber)
		if err != nil {
			return err
		}

		result, err = uc.reconcile(ctx, uow, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, uow UnitOfWork, account *domain.Account) (*ReconciliationResult, error) {
	turnover, err := uc.ledgerRepo.Turnover(ctx, uow, account.Number)
	if err != nil {
		return nil, err
	}

	calculated := account.OpeningBalance.Add(turnover.Credits).Sub(turnover.Debits)
	difference := account.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountNumber:     account.Number,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// CheckLedgerConsistency verifies that postings conserved money: the live
// balances add up to their opening balances plus the net turnover recorded for
// them. The turnover term is non-zero only after DeleteClient removed an
// account that took part in postings.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	var totals LedgerTotals

	err := runInUnit(ctx, uc.uowManager, ReadOnly, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		totals, err = uc.ledgerRepo.Totals(ctx, uow)
		return err
	})
	if err != nil {
		return err
	}

	return checkTotals(totals)
}

func checkTotals(totals LedgerTotals) error {
	expected := totals.Expected()
	if totals.Balance.Equal(expected) {
		return nil
	}

	return fmt.Errorf(
		"%w: balances=%s expected=%s (opening=%s net_transfers=%s) difference=%s",
		ErrInconsistentLedger,
		totals.Balance.String(),
		expected.String(),
		totals.Opening.String(),
		totals.NetTransfers.String(),
		totals.Balance.Sub(expected).String(),
	)
}

// ReconciliationReport represents a full reconciliation report.
// RemovedTransfers is the net amount live accounts received from accounts
// deleted after those postings.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	RemovedTransfers   decimal.Decimal
	CheckedAt          time.Time
}

// GenerateReconciliationReport reconciles every account from one snapshot.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	err := runInUnit(ctx, uc.uowManager, ReadOnly, func(ctx context.Context, uow UnitOfWork) error {
		accounts, err := uc.accountRepo.List(ctx, uow)
		if err != nil {
			return err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, uow, account)
			if err != nil {
				return fmt.Errorf("failed to reconcile account %s: %w", account.Number, err)
			}

			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		totals, err := uc.ledgerRepo.Totals(ctx, uow)
		if err != nil {
			return err
		}
		report.LedgerConsistent = checkTotals(totals) == nil
		report.RemovedTransfers = totals.NetTransfers

		return nil
	})
	if err != nil {
		return nil, err
	}

	report.CheckedAt = time.Now().UTC()

	return report, nil
}
