package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerbook/internal/domain"
)

// AccessMode selects the isolation of a unit of work.
type AccessMode int

const (
	// ReadWrite units are serializable and may mutate state.
	ReadWrite AccessMode = iota
	// ReadOnly units read a consistent committed snapshot.
	ReadOnly
)

func (m AccessMode) String() string {
	if m == ReadOnly {
		return "read-only"
	}
	return "read-write"
}

// UnitOfWork represents one database transaction.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkManager handles unit of work lifecycle.
type UnitOfWorkManager interface {
	Begin(ctx context.Context, mode AccessMode) (UnitOfWork, error)
}

// ClientRepository defines data access for clients.
type ClientRepository interface {
	Create(ctx context.Context, uow UnitOfWork, client *domain.Client) error
	GetByID(ctx context.Context, uow UnitOfWork, id int64) (*domain.Client, error)
	List(ctx context.Context, uow UnitOfWork) ([]*domain.Client, error)
	Delete(ctx context.Context, uow UnitOfWork, id int64) error
}

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, uow UnitOfWork, account *domain.Account) error
	GetByNumber(ctx context.Context, uow UnitOfWork, number string) (*domain.Account, error)
	GetByNumbersForUpdate(ctx context.Context, uow UnitOfWork, numbers []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, uow UnitOfWork, number string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, uow UnitOfWork) ([]*domain.Account, error)
	ListByClient(ctx context.Context, uow UnitOfWork, clientID int64) ([]*domain.Account, error)
	DeleteByClient(ctx context.Context, uow UnitOfWork, clientID int64) error
}

// TransactionFilter narrows a history query. Zero Limit means no limit.
type TransactionFilter struct {
	AccountNumber string
	Limit         int
	Offset        int
}

// TransactionRepository defines data access for transaction records.
// Records are append-only.
type TransactionRepository interface {
	Create(ctx context.Context, uow UnitOfWork, tx *domain.Transaction) error
	List(ctx context.Context, uow UnitOfWork, filter TransactionFilter) ([]*domain.Transaction, error)
}

// AccountTurnover is the sum of debits and credits recorded for an account.
type AccountTurnover struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// LedgerTotals sums the live accounts. NetTransfers is credits minus debits
// recorded for those accounts; it is zero until a counterparty is deleted.
type LedgerTotals struct {
	Balance      decimal.Decimal
	Opening      decimal.Decimal
	NetTransfers decimal.Decimal
}

// Expected is what the live balances must add up to.
func (t LedgerTotals) Expected() decimal.Decimal {
	return t.Opening.Add(t.NetTransfers)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context, uow UnitOfWork) (LedgerTotals, error)
	Turnover(ctx context.Context, uow UnitOfWork, accountNumber string) (AccountTurnover, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed with a retryable store error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// PostingMetrics observes posting outcomes.
type PostingMetrics interface {
	PostingSucceeded(amount decimal.Decimal, duration time.Duration)
	PostingFailed(kind string)
}

// IdempotencyProcessing is the value a claimed key holds until its response
// is stored.
const IdempotencyProcessing = "processing"

// IsIdempotencyProcessing reports whether a stored value is the in-flight marker.
func IsIdempotencyProcessing(value []byte) bool {
	return string(value) == IdempotencyProcessing
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
