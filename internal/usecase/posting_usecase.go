package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// PostingUseCase executes transfers between two accounts.
type PostingUseCase struct {
	uowManager      UnitOfWorkManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	idGen           IDGenerator
	logger          zerolog.Logger
	metrics         PostingMetrics
	conflictRetrier Retrier
	now             func() time.Time
}

// PostingOption configures a PostingUseCase.
type PostingOption func(*PostingUseCase)

// WithPostingLogger sets the logger.
func WithPostingLogger(logger zerolog.Logger) PostingOption {
	return func(uc *PostingUseCase) {
		uc.logger = logger
	}
}

// WithPostingMetrics sets the metrics sink.
func WithPostingMetrics(metrics PostingMetrics) PostingOption {
	return func(uc *PostingUseCase) {
		uc.metrics = metrics
	}
}

// WithConflictRetry re-runs a posting whose unit of work was aborted with
// domain.ErrConflict. The retrier must only retry conflicts: an aborted attempt
// leaves no trace, any other failure is returned as is. Disabled unless set.
func WithConflictRetry(retrier Retrier) PostingOption {
	return func(uc *PostingUseCase) {
		uc.conflictRetrier = retrier
	}
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	uowManager UnitOfWorkManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	idGen IDGenerator,
	opts ...PostingOption,
) *PostingUseCase {
	uc := &PostingUseCase{
		uowManager:      uowManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		idGen:           idGen,
		logger:          zerolog.Nop(),
		metrics:         nopPostingMetrics{},
		now:             func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// PostInput represents input for a single transfer.
type PostInput struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
}

// PostingResult is the outcome of a successful transfer.
type PostingResult struct {
	Transaction *domain.Transaction
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Post moves amount from one account to another as one atomic unit: two
// balance updates and one transaction record, or nothing at all.
func (uc *PostingUseCase) Post(ctx context.Context, input PostInput) (*PostingResult, error) {
	start := time.Now()

	input.FromAccount = strings.TrimSpace(input.FromAccount)
	input.ToAccount = strings.TrimSpace(input.ToAccount)

	result, err := uc.post(ctx, input)
	if err != nil {
		kind := domain.Kind(err)
		uc.metrics.PostingFailed(kind)
		uc.logger.Warn().
			Err(err).
			Str("kind", kind).
			Str("from", input.FromAccount).
			Str("to", input.ToAccount).
			Str("amount", input.Amount.String()).
			Msg("posting rejected")

		return nil, err
	}

	uc.metrics.PostingSucceeded(input.Amount, time.Since(start))
	uc.logger.Info().
		Int64("transaction_id", result.Transaction.ID).
		Str("reference", result.Transaction.Reference).
		Str("from", input.FromAccount).
		Str("to", input.ToAccount).
		Str("amount", input.Amount.StringFixed(domain.MoneyScale)).
		Msg("posting committed")

	return result, nil
}

func (uc *PostingUseCase) post(ctx context.Context, input PostInput) (*PostingResult, error) {
	// 0. Validate inputs before starting the unit of work
	draft := &domain.Transaction{
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
		Amount:      input.Amount,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if uc.conflictRetrier == nil {
		return uc.execute(ctx, input)
	}

	var result *PostingResult
	err := uc.conflictRetrier.Retry(ctx, func() error {
		var err error
		result, err = uc.execute(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *PostingUseCase) execute(ctx context.Context, input PostInput) (*PostingResult, error) {
	var result *PostingResult

	err := runInUnit(ctx, uc.uowManager, ReadWrite, func(ctx context.Context, uow UnitOfWork) error {
		// 1. Lock accounts in sorted order (DEADLOCK PREVENTION)
		numbers := []string{input.FromAccount, input.ToAccount}
		sort.Strings(numbers)

		accounts, err := uc.accountRepo.GetByNumbersForUpdate(ctx, uow, numbers)
		if err != nil {
			return storeFailure(err)
		}

		accountMap := buildAccountMap(accounts)
		fromAccount := accountMap[input.FromAccount]
		toAccount := accountMap[input.ToAccount]

		if fromAccount == nil || toAccount == nil {
			return domain.ErrAccountNotFound
		}

		// 2. Validate debit
		if err := fromAccount.ValidateDebit(input.Amount); err != nil {
			return err
		}

		now := uc.now()
		fromNewBalance := fromAccount.ApplyDebit(input.Amount)
		toNewBalance := toAccount.ApplyCredit(input.Amount)

		// 3. Update balances
		if err := uc.accountRepo.UpdateBalance(ctx, uow, fromAccount.Number, fromNewBalance, now); err != nil {
			return storeFailure(err)
		}

		if err := uc.accountRepo.UpdateBalance(ctx, uow, toAccount.Number, toNewBalance, now); err != nil {
			return storeFailure(err)
		}

		// 4. Record the transaction
		tx := &domain.Transaction{
			Reference:   uc.idGen.Generate(),
			FromAccount: fromAccount.Number,
			ToAccount:   toAccount.Number,
			Amount:      input.Amount,
		}

		if err := uc.transactionRepo.Create(ctx, uow, tx); err != nil {
			return storeFailure(err)
		}

		result = &PostingResult{
			Transaction: tx,
			FromBalance: fromNewBalance,
			ToBalance:   toNewBalance,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func buildAccountMap(accounts []*domain.Account) map[string]*domain.Account {
	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.Number] = a
	}

	return m
}

type nopPostingMetrics struct{}

func (nopPostingMetrics) PostingSucceeded(decimal.Decimal, time.Duration) {}

func (nopPostingMetrics) PostingFailed(string) {}
