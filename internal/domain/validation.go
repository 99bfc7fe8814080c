package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MinAccountCodeLength = 2
	MaxAccountCodeLength = 10
	MaxJournalLines      = 200
	MaxPaymentAmount     = "1000000000000" // 1 trillion
	MinYear              = 1900
	MaxYear              = 9999
)

// ValidateAccountCode requires a short all-digit code.
func ValidateAccountCode(code string) error {
	if len(code) < MinAccountCodeLength || len(code) > MaxAccountCodeLength {
		return fmt.Errorf("%w: %q must be %d-%d digits", ErrInvalidAccountCode, code, MinAccountCodeLength, MaxAccountCodeLength)
	}

	for _, r := range code {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q must contain digits only", ErrInvalidAccountCode, code)
		}
	}

	return nil
}

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAmount validates a payment amount
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !amount.Equal(RoundMoney(amount)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MoneyPlaces)
	}

	maxAmount := decimal.RequireFromString(MaxPaymentAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxPaymentAmount)
	}

	return nil
}

// ValidateRate requires a percentage in [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate.String())
	}
	return nil
}

// ValidateYear validates a calendar year
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
