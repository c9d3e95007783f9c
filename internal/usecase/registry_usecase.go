package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// RegistryUseCase manages clients and their accounts.
type RegistryUseCase struct {
	uowManager  UnitOfWorkManager
	clientRepo  ClientRepository
	accountRepo AccountRepository
	retrier     Retrier
}

// NewRegistryUseCase creates a new RegistryUseCase. Retrier may be nil.
func NewRegistryUseCase(uowManager UnitOfWorkManager, clientRepo ClientRepository, accountRepo AccountRepository, retrier Retrier) *RegistryUseCase {
	return &RegistryUseCase{
		uowManager:  uowManager,
		clientRepo:  clientRepo,
		accountRepo: accountRepo,
		retrier:     retrier,
	}
}

// CreateClientInput represents input for creating a client.
// ID is optional; when nil the store assigns one.
type CreateClientInput struct {
	ID   *int64
	Name string
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	ClientID       int64
	Number         string
	InitialBalance decimal.Decimal
}

// CreateClient creates a new client.
func (uc *RegistryUseCase) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	var client *domain.Client

	err := runInUnit(ctx, uc.uowManager, ReadWrite, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		client, err = createClient(ctx, uow, uc.clientRepo, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// CreateAccount creates a new account for an existing client.
func (uc *RegistryUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	var account *domain.Account

	err := runInUnit(ctx, uc.uowManager, ReadWrite, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		account, err = createAccount(ctx, uow, uc.accountRepo, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by number.
func (uc *RegistryUseCase) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	var account *domain.Account

	err := readOnly(ctx, uc.uowManager, uc.retrier, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		account, err = uc.accountRepo.GetByNumber(ctx, uow, strings.TrimSpace(number))
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// ListAccounts lists all accounts ordered by number.
func (uc *RegistryUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	var accounts []*domain.Account

	err := readOnly(ctx, uc.uowManager, uc.retrier, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		accounts, err = uc.accountRepo.List(ctx, uow)
		return err
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetClient retrieves a client with its accounts.
func (uc *RegistryUseCase) GetClient(ctx context.Context, id int64) (*domain.ClientAccounts, error) {
	var result *domain.ClientAccounts

	err := readOnly(ctx, uc.uowManager, uc.retrier, func(ctx context.Context, uow UnitOfWork) error {
		client, err := uc.clientRepo.GetByID(ctx, uow, id)
		if err != nil {
			return err
		}

		accounts, err := uc.accountRepo.ListByClient(ctx, uow, id)
		if err != nil {
			return err
		}

		result = &domain.ClientAccounts{Client: client, Accounts: accounts}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListClients lists all clients ordered by ID, each with its accounts.
func (uc *RegistryUseCase) ListClients(ctx context.Context) ([]*domain.ClientAccounts, error) {
	var result []*domain.ClientAccounts

	err := readOnly(ctx, uc.uowManager, uc.retrier, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		result, err = loadClientAccounts(ctx, uow, uc.clientRepo, uc.accountRepo)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteClient deletes a client and all of its accounts in one unit of work.
// Transaction records of the deleted accounts are kept.
func (uc *RegistryUseCase) DeleteClient(ctx context.Context, id int64) error {
	return runInUnit(ctx, uc.uowManager, ReadWrite, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := uc.clientRepo.GetByID(ctx, uow, id); err != nil {
			return err
		}

		if err := uc.accountRepo.DeleteByClient(ctx, uow, id); err != nil {
			return storeFailure(err)
		}

		if err := uc.clientRepo.Delete(ctx, uow, id); err != nil {
			return storeFailure(err)
		}

		return nil
	})
}

func createClient(ctx context.Context, uow UnitOfWork, clientRepo ClientRepository, input CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if err := domain.ValidateClientName(name); err != nil {
		return nil, err
	}

	client := &domain.Client{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if input.ID != nil {
		client.ID = *input.ID
	}

	if err := clientRepo.Create(ctx, uow, client); err != nil {
		return nil, storeFailure(err)
	}

	return client, nil
}

func createAccount(ctx context.Context, uow UnitOfWork, accountRepo AccountRepository, input CreateAccountInput) (*domain.Account, error) {
	number := strings.TrimSpace(input.Number)
	if err := domain.ValidateAccountNumber(number); err != nil {
		return nil, err
	}

	if err := domain.ValidateBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Number:         number,
		ClientID:       input.ClientID,
		Balance:        input.InitialBalance,
		OpeningBalance: input.InitialBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := accountRepo.Create(ctx, uow, account); err != nil {
		return nil, fmt.Errorf("account %s: %w", number, storeFailure(err))
	}

	return account, nil
}

func loadClientAccounts(ctx context.Context, uow UnitOfWork, clientRepo ClientRepository, accountRepo AccountRepository) ([]*domain.ClientAccounts, error) {
	clients, err := clientRepo.List(ctx, uow)
	if err != nil {
		return nil, err
	}

	accounts, err := accountRepo.List(ctx, uow)
	if err != nil {
		return nil, err
	}

	byClient := make(map[int64][]*domain.Account, len(clients))
	for _, a := range accounts {
		byClient[a.ClientID] = append(byClient[a.ClientID], a)
	}

	result := make([]*domain.ClientAccounts, 0, len(clients))
	for _, c := range clients {
		result = append(result, &domain.ClientAccounts{
			Client:   c,
			Accounts: byClient[c.ID],
		})
	}

	return result, nil
}
