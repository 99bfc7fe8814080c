package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// branch with errors.Is without knowing the specific sentinel.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

var (
	// Amount / input errors
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidPeriod    = fmt.Errorf("%w: invalid fiscal period", ErrValidation)
	ErrInvalidDateRange = fmt.Errorf("%w: end date precedes start date", ErrValidation)
	ErrInvalidRate      = fmt.Errorf("%w: rate must be between 0 and 100", ErrValidation)
	ErrInvalidYear      = fmt.Errorf("%w: invalid year", ErrValidation)

	// Ledger errors
	ErrAccountNotFound      = fmt.Errorf("%w: ledger account not found", ErrNotFound)
	ErrAccountExists        = fmt.Errorf("%w: ledger account already exists", ErrConflict)
	ErrAccountInUse         = fmt.Errorf("%w: ledger account is referenced by journal entries", ErrConflict)
	ErrInvalidAccountCode   = fmt.Errorf("%w: invalid ledger account code", ErrValidation)
	ErrInvalidAccountName   = fmt.Errorf("%w: invalid ledger account name", ErrValidation)
	ErrInvalidEntry         = fmt.Errorf("%w: journal entry must have exactly one non-zero side", ErrValidation)
	ErrUnbalancedEntries    = fmt.Errorf("%w: journal lines do not balance", ErrValidation)
	ErrInvalidReferenceType = fmt.Errorf("%w: invalid journal reference type", ErrValidation)

	// Period errors
	ErrPeriodNotFound         = fmt.Errorf("%w: fiscal period not found", ErrNotFound)
	ErrPeriodAlreadyClosed    = fmt.Errorf("%w: fiscal period already closed", ErrConflict)
	ErrPeriodNotClosed        = fmt.Errorf("%w: fiscal period is not closed", ErrValidation)
	ErrPeriodAlreadyConfirmed = fmt.Errorf("%w: fiscal period already confirmed", ErrConflict)
	ErrCloseInProgress        = fmt.Errorf("%w: fiscal period close already in progress", ErrConflict)

	// Loan / savings errors
	ErrLoanNotFound          = fmt.Errorf("%w: loan not found", ErrNotFound)
	ErrLoanNotPayable        = fmt.Errorf("%w: loan does not accept payments in its current status", ErrValidation)
	ErrOverpayment           = fmt.Errorf("%w: payment exceeds amount owed", ErrValidation)
	ErrSavingAccountNotFound = fmt.Errorf("%w: saving account not found", ErrNotFound)
	ErrSnapshotExists        = fmt.Errorf("%w: balance snapshot already exists", ErrConflict)

	// Dividend errors
	ErrDistributionNotFound        = fmt.Errorf("%w: dividend distribution not found", ErrNotFound)
	ErrDistributionExists          = fmt.Errorf("%w: dividend distribution already exists for year", ErrConflict)
	ErrDistributionAlreadyApproved = fmt.Errorf("%w: dividend distribution already approved", ErrConflict)
)

// TrialBalanceError reports a period whose debits and credits differ by more
// than the rounding tolerance.
type TrialBalanceError struct {
	PeriodKey string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	Variance  decimal.Decimal
}

func (e *TrialBalanceError) Error() string {
	return fmt.Sprintf("trial balance mismatch for %s: debits=%s credits=%s variance=%s",
		e.PeriodKey, e.Debits.StringFixed(2), e.Credits.StringFixed(2), e.Variance.StringFixed(2))
}

// Unwrap classifies the mismatch as a validation failure.
func (e *TrialBalanceError) Unwrap() error {
	return ErrValidation
}
