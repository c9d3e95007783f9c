package app

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/config"
	"github.com/iho/ledgerbook/internal/usecase"
	"github.com/iho/ledgerbook/internal/usecase/mocks"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := mocks.NewMockUnitOfWorkManager(ctrl)

	ledger := New(mgr, Options{Logger: zerolog.Nop(), RetryConflicts: true})

	if ledger.Registry == nil || ledger.Posting == nil || ledger.History == nil ||
		ledger.Reconciliation == nil || ledger.Exchange == nil {
		t.Fatalf("expected every use case to be wired, got %+v", ledger)
	}

	// Rejected before any unit is opened; the mock fails on an unexpected Begin.
	_, err := ledger.Posting.Post(context.Background(), usecase.PostInput{
		FromAccount: "A",
		ToAccount:   "B",
		Amount:      decimal.Zero,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "://bad", MigrateOnStart: false}

	if _, _, err := Connect(context.Background(), cfg, Options{Logger: zerolog.Nop()}); err == nil {
		t.Fatal("expected error for invalid database URL")
	}
}
