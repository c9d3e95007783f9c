package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants, matching the column sizes of the schema.
const (
	MaxClientNameLength    = 100
	MaxAccountNumberLength = 20
	MoneyScale             = 2
	MaxMoneyAmount         = "9999999999.99" // NUMERIC(12,2)
)

var maxMoney = decimal.RequireFromString(MaxMoneyAmount)

// ValidateAmount validates a posting amount: strictly positive, at most two
// fractional digits, and representable in the balance column.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !hasMoneyScale(amount) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, MoneyScale)
	}

	if amount.GreaterThan(maxMoney) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxMoneyAmount)
	}

	return nil
}

// ValidateBalance validates an initial or imported balance.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", ErrInvalidBalance)
	}

	if !hasMoneyScale(balance) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidBalance, MoneyScale)
	}

	if balance.GreaterThan(maxMoney) {
		return fmt.Errorf("%w: maximum balance is %s", ErrInvalidBalance, MaxMoneyAmount)
	}

	return nil
}

// ValidateClientName validates a client display name.
func ValidateClientName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidClientName)
	}

	if utf8.RuneCountInString(name) > MaxClientNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidClientName, MaxClientNameLength)
	}

	return nil
}

// ValidateAccountNumber validates an account number.
func ValidateAccountNumber(number string) error {
	if strings.TrimSpace(number) != number || number == "" {
		return fmt.Errorf("%w: number cannot be empty or padded", ErrInvalidAccountNumber)
	}

	if utf8.RuneCountInString(number) > MaxAccountNumberLength {
		return fmt.Errorf("%w: number exceeds %d characters", ErrInvalidAccountNumber, MaxAccountNumberLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
// A zero limit means no limit. The offset is capped at what an INT4 holds;
// past that the page is empty anyway.
func ValidatePagination(limit, offset int) (int, int) {
	const (
		MaxPageSize = 1000
		MaxOffset   = math.MaxInt32
	)

	if limit < 0 {
		limit = 0
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	if offset > MaxOffset {
		offset = MaxOffset
	}

	return limit, offset
}

func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
