package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Posting errors
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Store errors
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConflict            = errors.New("concurrent update conflict")
	ErrCommitFailed        = errors.New("commit failed")
	ErrNotFound            = errors.New("not found")

	// Registry errors
	ErrClientNotFound       = fmt.Errorf("client %w", ErrNotFound)
	ErrInvalidClientName    = errors.New("invalid client name")
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidBalance       = errors.New("invalid balance")
)

// InsufficientFundsError reports the balance that was available when a debit was refused.
type InsufficientFundsError struct {
	AccountNumber string
	Available     decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: available %s, requested %s",
		e.AccountNumber, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

// Is makes errors.Is(err, ErrInsufficientFunds) match.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Error kinds, used for display and metric labels.
const (
	KindInvalidAmount       = "InvalidAmount"
	KindSameAccount         = "SameAccount"
	KindAccountNotFound     = "AccountNotFound"
	KindInsufficientFunds   = "InsufficientFunds"
	KindConstraintViolation = "ConstraintViolation"
	KindConflict            = "Conflict"
	KindCommitFailed        = "CommitFailed"
	KindNotFound            = "NotFound"
	KindValidation          = "Validation"
	KindUnknown             = "Unknown"
)

// Kind classifies err into one of the ledger error kinds.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrSameAccount):
		return KindSameAccount
	case errors.Is(err, ErrAccountNotFound):
		return KindAccountNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrConstraintViolation):
		return KindConstraintViolation
	case errors.Is(err, ErrCommitFailed):
		return KindCommitFailed
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidClientName),
		errors.Is(err, ErrInvalidAccountNumber),
		errors.Is(err, ErrInvalidBalance):
		return KindValidation
	default:
		return KindUnknown
	}
}
