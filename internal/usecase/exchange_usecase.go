package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// ExchangeUseCase moves clients and accounts in and out of the ledger in bulk.
// Imported balances are opening balances, not postings.
type ExchangeUseCase struct {
	uowManager  UnitOfWorkManager
	clientRepo  ClientRepository
	accountRepo AccountRepository
	logger      zerolog.Logger
}

// NewExchangeUseCase creates a new ExchangeUseCase.
func NewExchangeUseCase(uowManager UnitOfWorkManager, clientRepo ClientRepository, accountRepo AccountRepository, logger zerolog.Logger) *ExchangeUseCase {
	return &ExchangeUseCase{
		uowManager:  uowManager,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ImportClient is one client of an import document. A zero ID lets the
// store assign one.
type ImportClient struct {
	ID       int64
	Name     string
	Accounts []ImportAccount
}

// ImportAccount is one account of an import document.
type ImportAccount struct {
	Number  string
	Balance decimal.Decimal
}

// ImportSummary counts what an import created.
type ImportSummary struct {
	Clients  int
	Accounts int
}

// Export returns every client with its accounts from one consistent snapshot.
func (uc *ExchangeUseCase) Export(ctx context.Context) ([]*domain.ClientAccounts, error) {
	var result []*domain.ClientAccounts

	err := runInUnit(ctx, uc.uowManager, ReadOnly, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = loadClientAccounts(ctx, uow, uc.clientRepo, uc.accountRepo)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Int("clients", len(result)).Msg("export prepared")

	return result, nil
}

// Import creates all clients and accounts in one unit of work. Any failure,
// such as a duplicate account number, leaves the ledger untouched.
func (uc *ExchangeUseCase) Import(ctx context.Context, clients []ImportClient) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := runInUnit(ctx, uc.uowManager, ReadWrite, func(ctx context.Context, uow UnitOfWork) error {
		for _, ic := range clients {
			input := CreateClientInput{Name: ic.Name}
			if ic.ID > 0 {
				id := ic.ID
				input.ID = &id
			}

			client, err := createClient(ctx, uow, uc.clientRepo, input)
			if err != nil {
				return fmt.Errorf("client %d: %w", ic.ID, err)
			}
			summary.Clients++

			for _, ia := range ic.Accounts {
				_, err := createAccount(ctx, uow, uc.accountRepo, CreateAccountInput{
					ClientID:       client.ID,
					Number:         ia.Number,
					InitialBalance: ia.Balance,
				})
				if err != nil {
					return fmt.Errorf("client %d: %w", ic.ID, err)
				}
				summary.Accounts++
			}
		}

		return nil
	})
	if err != nil {
		uc.logger.Error().Err(err).Msg("import rolled back")
		return nil, err
	}

	uc.logger.Info().
		Int("clients", summary.Clients).
		Int("accounts", summary.Accounts).
		Msg("import committed")

	return summary, nil
}
