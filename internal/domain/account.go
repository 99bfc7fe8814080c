package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountCategory is the chart-of-accounts classification of a ledger account.
type AccountCategory string

const (
	CategoryAsset     AccountCategory = "ASSET"
	CategoryLiability AccountCategory = "LIABILITY"
	CategoryEquity    AccountCategory = "EQUITY"
	CategoryIncome    AccountCategory = "INCOME"
	CategoryExpense   AccountCategory = "EXPENSE"
)

// CategoryFromCode derives the category from the leading digit of an account
// code: 1 asset, 2 liability, 3 equity, 4 income, 5 expense.
func CategoryFromCode(code string) (AccountCategory, error) {
	if err := ValidateAccountCode(code); err != nil {
		return "", err
	}

	switch code[0] {
	case '1':
		return CategoryAsset, nil
	case '2':
		return CategoryLiability, nil
	case '3':
		return CategoryEquity, nil
	case '4':
		return CategoryIncome, nil
	case '5':
		return CategoryExpense, nil
	default:
		return "", fmt.Errorf("%w: %q has no category prefix", ErrInvalidAccountCode, code)
	}
}

// DebitNormal reports whether balances in this category grow with debits.
func (c AccountCategory) DebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}

// LedgerAccount is an entry in the chart of accounts. Once journal entries
// reference it, it can no longer be deleted.
type LedgerAccount struct {
	Code       string
	Name       string
	Category   AccountCategory
	ParentCode *string
	CreatedAt  time.Time
}

// Validate checks code, name and that the category agrees with the code.
func (a *LedgerAccount) Validate() error {
	category, err := CategoryFromCode(a.Code)
	if err != nil {
		return err
	}

	if a.Category != "" && a.Category != category {
		return fmt.Errorf("%w: code %s belongs to %s, not %s", ErrInvalidAccountCode, a.Code, category, a.Category)
	}

	if err := ValidateAccountName(a.Name); err != nil {
		return err
	}

	if a.ParentCode != nil {
		if err := ValidateAccountCode(*a.ParentCode); err != nil {
			return err
		}
		if !strings.HasPrefix(a.Code, (*a.ParentCode)[:1]) {
			return fmt.Errorf("%w: parent %s is in a different category", ErrInvalidAccountCode, *a.ParentCode)
		}
	}

	return nil
}
