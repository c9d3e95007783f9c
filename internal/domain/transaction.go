package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one posting between two accounts.
type Transaction struct {
	ID          int64
	Reference   string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// Involves reports whether the account is the source or destination.
func (t *Transaction) Involves(accountNumber string) bool {
	return t.FromAccount == accountNumber || t.ToAccount == accountNumber
}

// Validate validates the posting request carried by t.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if t.FromAccount == t.ToAccount {
		return ErrSameAccount
	}

	return nil
}
