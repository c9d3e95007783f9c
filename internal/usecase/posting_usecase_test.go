package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/usecase"
	"github.com/iho/ledgerbook/internal/usecase/mocks"
)

// decimalMatcher compares decimals by value rather than representation.
type decimalMatcher struct {
	want decimal.Decimal
}

func decimalEq(v string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(v)}
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is decimal " + m.want.String()
}

func TestPostingUseCase_Post(t *testing.T) {
	tests := []struct {
		name       string
		input      usecase.PostInput
		setupMocks func(*mocks.MockUnitOfWorkManager, *mocks.MockUnitOfWork, *mocks.MockAccountRepository, *mocks.MockTransactionRepository)
		errorType  error
	}{
		{
			name: "successful posting",
			input: usecase.PostInput{
				FromAccount: "B-2",
				ToAccount:   "A-1",
				Amount:      decimal.NewFromInt(100),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, uow *mocks.MockUnitOfWork, accRepo *mocks.MockAccountRepository, txRepo *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil)
				accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, []string{"A-1", "B-2"}).Return([]*domain.Account{
					{Number: "A-1", Balance: decimal.NewFromInt(10)},
					{Number: "B-2", Balance: decimal.NewFromInt(500)},
				}, nil)
				gomock.InOrder(
					accRepo.EXPECT().UpdateBalance(gomock.Any(), uow, "B-2", decimalEq("400"), gomock.Any()).Return(nil),
					accRepo.EXPECT().UpdateBalance(gomock.Any(), uow, "A-1", decimalEq("110"), gomock.Any()).Return(nil),
				)
				txRepo.EXPECT().Create(gomock.Any(), uow, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ usecase.UnitOfWork, tx *domain.Transaction) error {
						tx.ID = 7
						return nil
					})
				uow.EXPECT().Commit(gomock.Any()).Return(nil)
				uow.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name: "reject zero amount before touching the store",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "B-2",
				Amount:      decimal.Zero,
			},
			setupMocks: func(*mocks.MockUnitOfWorkManager, *mocks.MockUnitOfWork, *mocks.MockAccountRepository, *mocks.MockTransactionRepository) {
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "invalid amount wins over same account",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "A-1",
				Amount:      decimal.NewFromInt(-5),
			},
			setupMocks: func(*mocks.MockUnitOfWorkManager, *mocks.MockUnitOfWork, *mocks.MockAccountRepository, *mocks.MockTransactionRepository) {
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "reject same account",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   " A-1 ",
				Amount:      decimal.NewFromInt(5),
			},
			setupMocks: func(*mocks.MockUnitOfWorkManager, *mocks.MockUnitOfWork, *mocks.MockAccountRepository, *mocks.MockTransactionRepository) {
			},
			errorType: domain.ErrSameAccount,
		},
		{
			name: "reject missing destination",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "Z-9",
				Amount:      decimal.NewFromInt(5),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, uow *mocks.MockUnitOfWork, accRepo *mocks.MockAccountRepository, _ *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil)
				accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, []string{"A-1", "Z-9"}).Return([]*domain.Account{
					{Number: "A-1", Balance: decimal.NewFromInt(500)},
				}, nil)
				uow.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			errorType: domain.ErrAccountNotFound,
		},
		{
			name: "reject insufficient funds",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "B-2",
				Amount:      decimal.NewFromInt(5000),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, uow *mocks.MockUnitOfWork, accRepo *mocks.MockAccountRepository, _ *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil)
				accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, gomock.Any()).Return([]*domain.Account{
					{Number: "A-1", Balance: decimal.NewFromInt(700)},
					{Number: "B-2", Balance: decimal.NewFromInt(800)},
				}, nil)
				uow.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			errorType: domain.ErrInsufficientFunds,
		},
		{
			name: "serialization failure surfaces as conflict",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "B-2",
				Amount:      decimal.NewFromInt(5),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, uow *mocks.MockUnitOfWork, accRepo *mocks.MockAccountRepository, _ *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil)
				accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, gomock.Any()).Return(nil, domain.ErrConflict)
				uow.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			errorType: domain.ErrConflict,
		},
		{
			name: "commit failure surfaces as commit failed",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "B-2",
				Amount:      decimal.NewFromInt(5),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, uow *mocks.MockUnitOfWork, accRepo *mocks.MockAccountRepository, txRepo *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil)
				accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, gomock.Any()).Return([]*domain.Account{
					{Number: "A-1", Balance: decimal.NewFromInt(10)},
					{Number: "B-2", Balance: decimal.NewFromInt(10)},
				}, nil)
				accRepo.EXPECT().UpdateBalance(gomock.Any(), uow, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
				txRepo.EXPECT().Create(gomock.Any(), uow, gomock.Any()).Return(nil)
				uow.EXPECT().Commit(gomock.Any()).Return(errors.New("connection reset"))
				uow.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
			errorType: domain.ErrCommitFailed,
		},
		{
			name: "begin failure surfaces as commit failed",
			input: usecase.PostInput{
				FromAccount: "A-1",
				ToAccount:   "B-2",
				Amount:      decimal.NewFromInt(5),
			},
			setupMocks: func(mgr *mocks.MockUnitOfWorkManager, _ *mocks.MockUnitOfWork, _ *mocks.MockAccountRepository, _ *mocks.MockTransactionRepository) {
				mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(nil, errors.New("pool closed"))
			},
			errorType: domain.ErrCommitFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mgr := mocks.NewMockUnitOfWorkManager(ctrl)
			uow := mocks.NewMockUnitOfWork(ctrl)
			accRepo := mocks.NewMockAccountRepository(ctrl)
			txRepo := mocks.NewMockTransactionRepository(ctrl)
			idGen := mocks.NewMockIDGenerator(ctrl)
			idGen.EXPECT().Generate().Return("01HZX").AnyTimes()

			tt.setupMocks(mgr, uow, accRepo, txRepo)

			uc := usecase.NewPostingUseCase(mgr, accRepo, txRepo, idGen)
			result, err := uc.Post(context.Background(), tt.input)

			if tt.errorType != nil {
				if err == nil {
					t.Fatalf("expected error %v, got nil", tt.errorType)
				}
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				if result != nil {
					t.Errorf("expected nil result on error, got %+v", result)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Transaction.Reference != "01HZX" {
				t.Errorf("expected reference 01HZX, got %s", result.Transaction.Reference)
			}
			if result.Transaction.ID != 7 {
				t.Errorf("expected transaction ID 7, got %d", result.Transaction.ID)
			}
			if !result.FromBalance.Equal(decimal.NewFromInt(400)) {
				t.Errorf("expected from balance 400, got %s", result.FromBalance)
			}
			if !result.ToBalance.Equal(decimal.NewFromInt(110)) {
				t.Errorf("expected to balance 110, got %s", result.ToBalance)
			}
		})
	}
}

func TestPostingUseCase_InsufficientFundsCarriesAvailable(t *testing.T) {
	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "700.00", "B": "800.00"})

	_, err := newMemPosting(store).Post(context.Background(), usecase.PostInput{
		FromAccount: "A",
		ToAccount:   "B",
		Amount:      decimal.NewFromInt(5000),
	})

	var insufficient *domain.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if !insufficient.Available.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected available 700, got %s", insufficient.Available)
	}
	if insufficient.AccountNumber != "A" {
		t.Errorf("expected account A, got %s", insufficient.AccountNumber)
	}
}

func TestPostingUseCase_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockPostingMetrics(ctrl)

	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "100.00", "B": "0.00"})
	uc := newMemPosting(store, usecase.WithPostingMetrics(metrics))

	metrics.EXPECT().PostingSucceeded(decimalEq("10"), gomock.Any())
	metrics.EXPECT().PostingFailed(domain.KindSameAccount)
	metrics.EXPECT().PostingFailed(domain.KindInsufficientFunds)

	ctx := context.Background()
	if _, err := uc.Post(ctx, usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = uc.Post(ctx, usecase.PostInput{FromAccount: "A", ToAccount: "A", Amount: decimal.NewFromInt(10)})
	_, _ = uc.Post(ctx, usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(1000)})
}

func TestPostingUseCase_ConflictRetry(t *testing.T) {
	ctrl := gomock.NewController(t)

	mgr := mocks.NewMockUnitOfWorkManager(ctrl)
	uow := mocks.NewMockUnitOfWork(ctrl)
	accRepo := mocks.NewMockAccountRepository(ctrl)
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error {
			if err := op(); !errors.Is(err, domain.ErrConflict) {
				return err
			}
			return op()
		})

	mgr.EXPECT().Begin(gomock.Any(), usecase.ReadWrite).Return(uow, nil).Times(2)
	uow.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, gomock.Any()).Return(nil, domain.ErrConflict),
		accRepo.EXPECT().GetByNumbersForUpdate(gomock.Any(), uow, gomock.Any()).Return([]*domain.Account{
			{Number: "A", Balance: decimal.NewFromInt(50)},
			{Number: "B", Balance: decimal.NewFromInt(0)},
		}, nil),
	)
	accRepo.EXPECT().UpdateBalance(gomock.Any(), uow, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	idGen.EXPECT().Generate().Return("ref")
	txRepo.EXPECT().Create(gomock.Any(), uow, gomock.Any()).Return(nil)
	uow.EXPECT().Commit(gomock.Any()).Return(nil)

	uc := usecase.NewPostingUseCase(mgr, accRepo, txRepo, idGen, usecase.WithConflictRetry(retrier))
	result, err := uc.Post(context.Background(), usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.FromBalance.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected from balance 30, got %s", result.FromBalance)
	}
}

func TestPostingUseCase_Conservation(t *testing.T) {
	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "1000.00"})
	store.seed(2, "Bob", map[string]string{"B": "500.00"})
	uc := newMemPosting(store)

	amounts := []string{"0.01", "12.34", "100", "887.65"}
	for _, a := range amounts {
		before := store.balance("A").Add(store.balance("B"))
		if _, err := uc.Post(context.Background(), usecase.PostInput{
			FromAccount: "A",
			ToAccount:   "B",
			Amount:      decimal.RequireFromString(a),
		}); err != nil {
			t.Fatalf("post %s: %v", a, err)
		}
		after := store.balance("A").Add(store.balance("B"))
		if !before.Equal(after) {
			t.Fatalf("sum changed after posting %s: %s -> %s", a, before, after)
		}
	}

	if !store.balance("A").IsZero() {
		t.Errorf("expected A drained to zero, got %s", store.balance("A"))
	}
}

func TestPostingUseCase_RejectionsLeaveNoTrace(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.PostInput
		errorType error
	}{
		{"insufficient funds", usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(1001)}, domain.ErrInsufficientFunds},
		{"same account", usecase.PostInput{FromAccount: "A", ToAccount: "A", Amount: decimal.NewFromInt(1)}, domain.ErrSameAccount},
		{"negative amount", usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(-1)}, domain.ErrInvalidAmount},
		{"sub-cent amount", usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.RequireFromString("0.001")}, domain.ErrInvalidAmount},
		{"unknown source", usecase.PostInput{FromAccount: "X", ToAccount: "B", Amount: decimal.NewFromInt(1)}, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.seed(1, "Alice", map[string]string{"A": "1000.00", "B": "500.00"})

			_, err := newMemPosting(store).Post(context.Background(), tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}

			if !store.balance("A").Equal(decimal.NewFromInt(1000)) || !store.balance("B").Equal(decimal.NewFromInt(500)) {
				t.Errorf("balances changed: A=%s B=%s", store.balance("A"), store.balance("B"))
			}
			if n := store.transactionCount(); n != 0 {
				t.Errorf("expected no records, got %d", n)
			}
		})
	}
}

func TestPostingUseCase_StoreFailureLeavesNoTrace(t *testing.T) {
	t.Run("update failure", func(t *testing.T) {
		store := newMemStore()
		store.seed(1, "Alice", map[string]string{"A": "1000.00", "B": "500.00"})
		uc := usecase.NewPostingUseCase(store, memAccountRepo{updateErr: errors.New("disk full")}, memTransactionRepo{}, &seqIDGenerator{})

		_, err := uc.Post(context.Background(), usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(10)})
		if !errors.Is(err, domain.ErrCommitFailed) {
			t.Fatalf("expected ErrCommitFailed, got %v", err)
		}
		if !store.balance("A").Equal(decimal.NewFromInt(1000)) || store.transactionCount() != 0 {
			t.Errorf("partial effects observed")
		}
	})

	t.Run("commit failure", func(t *testing.T) {
		store := newMemStore()
		store.seed(1, "Alice", map[string]string{"A": "1000.00", "B": "500.00"})
		store.commitErr = domain.ErrConflict

		_, err := newMemPosting(store).Post(context.Background(), usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(10)})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if !store.balance("B").Equal(decimal.NewFromInt(500)) || store.transactionCount() != 0 {
			t.Errorf("partial effects observed")
		}
	})
}

func TestPostingUseCase_NotIdempotent(t *testing.T) {
	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "1000.00", "B": "500.00"})
	uc := newMemPosting(store)

	input := usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(100)}
	first, err := uc.Post(context.Background(), input)
	if err != nil {
		t.Fatalf("first post: %v", err)
	}
	second, err := uc.Post(context.Background(), input)
	if err != nil {
		t.Fatalf("second post: %v", err)
	}

	if first.Transaction.ID == second.Transaction.ID {
		t.Errorf("expected distinct records, both have ID %d", first.Transaction.ID)
	}
	if store.transactionCount() != 2 {
		t.Errorf("expected 2 records, got %d", store.transactionCount())
	}
	if !store.balance("A").Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected A=800, got %s", store.balance("A"))
	}
}

func TestPostingUseCase_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "1000.00", "B": "0.00"})
	uc := newMemPosting(store)

	const workers = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Post(context.Background(), usecase.PostInput{
				FromAccount: "A",
				ToAccount:   "B",
				Amount:      decimal.NewFromInt(100),
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("expected 10 successful postings, got %d", succeeded)
	}
	if store.balance("A").IsNegative() {
		t.Fatalf("balance went negative: %s", store.balance("A"))
	}
	if !store.balance("A").IsZero() || !store.balance("B").Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected balances A=%s B=%s", store.balance("A"), store.balance("B"))
	}
	if store.transactionCount() != succeeded {
		t.Errorf("expected %d records, got %d", succeeded, store.transactionCount())
	}
}

func TestPostingUseCase_Scenario(t *testing.T) {
	store := newMemStore()
	store.seed(1, "Alice", map[string]string{"A": "1000.00"})
	store.seed(2, "Bob", map[string]string{"B": "500.00"})
	posting := newMemPosting(store)
	history := usecase.NewHistoryUseCase(store, memTransactionRepo{}, nil)
	ctx := context.Background()

	result, err := posting.Post(ctx, usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(300)})
	if err != nil {
		t.Fatalf("post 300: %v", err)
	}
	if !result.FromBalance.Equal(decimal.NewFromInt(700)) || !result.ToBalance.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected A=700 B=800, got A=%s B=%s", result.FromBalance, result.ToBalance)
	}
	if result.Transaction.CreatedAt.IsZero() || time.Since(result.Transaction.CreatedAt) > time.Minute {
		t.Errorf("unexpected created_at %v", result.Transaction.CreatedAt)
	}

	_, err = posting.Post(ctx, usecase.PostInput{FromAccount: "A", ToAccount: "B", Amount: decimal.NewFromInt(5000)})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	txs, err := history.ListForAccount(ctx, "B", usecase.Page{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 record for B, got %d", len(txs))
	}
	if txs[0].FromAccount != "A" || txs[0].ToAccount != "B" || !txs[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("unexpected record %+v", txs[0])
	}
}
