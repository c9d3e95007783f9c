package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/postgres/generated"
	"github.com/iho/ledgerbook/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, uow usecase.UnitOfWork, account *domain.Account) error {
	_, err := queriesFor(uow).CreateAccount(ctx, generated.CreateAccountParams{
		AccountNumber:  account.Number,
		ClientID:       account.ClientID,
		Balance:        decimalToNumeric(account.Balance),
		OpeningBalance: decimalToNumeric(account.OpeningBalance),
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})

	return translateError(err)
}

// GetByNumber retrieves an account by number.
func (r *AccountRepository) GetByNumber(ctx context.Context, uow usecase.UnitOfWork, number string) (*domain.Account, error) {
	row, err := queriesFor(uow).GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, translateError(err)
	}

	return rowToAccount(row), nil
}

// GetByNumbersForUpdate retrieves accounts with FOR UPDATE locks taken in
// account number order. Missing numbers are absent from the result.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, uow usecase.UnitOfWork, numbers []string) ([]*domain.Account, error) {
	rows, err := queriesFor(uow).GetAccountsByNumbersForUpdate(ctx, numbers)
	if err != nil {
		return nil, translateError(err)
	}

	return rowsToAccounts(rows), nil
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, uow usecase.UnitOfWork, number string, balance decimal.Decimal, updatedAt time.Time) error {
	n, err := queriesFor(uow).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		AccountNumber: number,
		Balance:       decimalToNumeric(balance),
		UpdatedAt:     timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists all accounts ordered by number.
func (r *AccountRepository) List(ctx context.Context, uow usecase.UnitOfWork) ([]*domain.Account, error) {
	rows, err := queriesFor(uow).ListAccounts(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	return rowsToAccounts(rows), nil
}

// ListByClient lists the accounts of one client ordered by number.
func (r *AccountRepository) ListByClient(ctx context.Context, uow usecase.UnitOfWork, clientID int64) ([]*domain.Account, error) {
	rows, err := queriesFor(uow).ListAccountsByClient(ctx, clientID)
	if err != nil {
		return nil, translateError(err)
	}

	return rowsToAccounts(rows), nil
}

// DeleteByClient deletes every account of a client.
func (r *AccountRepository) DeleteByClient(ctx context.Context, uow usecase.UnitOfWork, clientID int64) error {
	return translateError(queriesFor(uow).DeleteAccountsByClient(ctx, clientID))
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		Number:         row.AccountNumber,
		ClientID:       row.ClientID,
		Balance:        numericToDecimal(row.Balance),
		OpeningBalance: numericToDecimal(row.OpeningBalance),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
