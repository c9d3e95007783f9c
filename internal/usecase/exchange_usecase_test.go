package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
)

func newMemExchange(store *memStore) *usecase.ExchangeUseCase {
	return usecase.NewExchangeUseCase(store, memClientRepo{}, memAccountRepo{}, zerolog.Nop())
}

func TestExchangeUseCase_Import(t *testing.T) {
	store := newMemStore()
	uc := newMemExchange(store)

	summary, err := uc.Import(context.Background(), []usecase.ImportClient{
		{ID: 10, Name: "Alice", Accounts: []usecase.ImportAccount{
			{Number: "A1", Balance: decimal.RequireFromString("100.50")},
			{Number: "A2", Balance: decimal.Zero},
		}},
		{Name: "Bob", Accounts: []usecase.ImportAccount{
			{Number: "B1", Balance: decimal.NewFromInt(7)},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Clients != 2 || summary.Accounts != 3 {
		t.Errorf("expected 2 clients and 3 accounts, got %+v", summary)
	}
	if !store.balance("A1").Equal(decimal.RequireFromString("100.50")) {
		t.Errorf("expected A1=100.50, got %s", store.balance("A1"))
	}
	if store.transactionCount() != 0 {
		t.Errorf("import must not create transaction records")
	}

	exported, err := uc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(exported))
	}
	if exported[0].Client.ID != 10 {
		t.Errorf("expected explicit ID 10 kept, got %d", exported[0].Client.ID)
	}
	if exported[1].Client.ID <= 10 {
		t.Errorf("expected assigned ID after 10, got %d", exported[1].Client.ID)
	}
}

func TestExchangeUseCase_Import_AllOrNothing(t *testing.T) {
	tests := []struct {
		name      string
		clients   []usecase.ImportClient
		errorType error
	}{
		{
			name: "duplicate account number",
			clients: []usecase.ImportClient{
				{ID: 1, Name: "Alice", Accounts: []usecase.ImportAccount{{Number: "X", Balance: decimal.Zero}}},
				{ID: 2, Name: "Bob", Accounts: []usecase.ImportAccount{{Number: "X", Balance: decimal.Zero}}},
			},
			errorType: domain.ErrConstraintViolation,
		},
		{
			name: "existing client id",
			clients: []usecase.ImportClient{
				{ID: 5, Name: "Alice"},
			},
			errorType: domain.ErrConstraintViolation,
		},
		{
			name: "negative balance",
			clients: []usecase.ImportClient{
				{ID: 1, Name: "Alice", Accounts: []usecase.ImportAccount{{Number: "Y", Balance: decimal.NewFromInt(-3)}}},
			},
			errorType: domain.ErrInvalidBalance,
		},
		{
			name: "blank client name",
			clients: []usecase.ImportClient{
				{ID: 1, Name: "Alice"},
				{ID: 2, Name: ""},
			},
			errorType: domain.ErrInvalidClientName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.seed(5, "Existing", map[string]string{"E": "1.00"})
			uc := newMemExchange(store)

			_, err := uc.Import(context.Background(), tt.clients)
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}

			exported, err := uc.Export(context.Background())
			if err != nil {
				t.Fatalf("export: %v", err)
			}
			if len(exported) != 1 || len(exported[0].Accounts) != 1 {
				t.Errorf("expected ledger untouched, got %d clients", len(exported))
			}
		})
	}
}
