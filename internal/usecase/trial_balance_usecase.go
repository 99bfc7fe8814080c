package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// TrialBalance is the debit/credit verdict for one period.
type TrialBalance struct {
	PeriodKey string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	Variance  decimal.Decimal
	Balanced  bool
}

// Err returns a *domain.TrialBalanceError when the period is out of balance.
func (tb *TrialBalance) Err() error {
	if tb.Balanced {
		return nil
	}
	return &domain.TrialBalanceError{
		PeriodKey: tb.PeriodKey,
		Debits:    tb.Debits,
		Credits:   tb.Credits,
		Variance:  tb.Variance,
	}
}

// TrialBalanceUseCase sums a period's journal and checks it against the
// rounding tolerance.
type TrialBalanceUseCase struct {
	journalRepo JournalRepository
	tolerance   decimal.Decimal
}

// NewTrialBalanceUseCase creates a new TrialBalanceUseCase. A zero tolerance
// demands exact balance; a negative one falls back to
// DefaultTrialBalanceTolerance.
func NewTrialBalanceUseCase(journalRepo JournalRepository, tolerance decimal.Decimal) *TrialBalanceUseCase {
	if tolerance.IsNegative() {
		tolerance = DefaultTrialBalanceTolerance
	}

	return &TrialBalanceUseCase{
		journalRepo: journalRepo,
		tolerance:   tolerance,
	}
}

// GetTrialBalance returns the verdict for periodKey ("YYYY-MM").
func (uc *TrialBalanceUseCase) GetTrialBalance(ctx context.Context, periodKey string) (*TrialBalance, error) {
	period, err := domain.ParsePeriodKey(periodKey)
	if err != nil {
		return nil, err
	}

	return uc.Check(ctx, nil, period)
}

// Check computes the verdict inside tx, so the gate sees the same snapshot
// of the journal as the rest of the close.
func (uc *TrialBalanceUseCase) Check(ctx context.Context, tx Transaction, period domain.Period) (*TrialBalance, error) {
	debits, credits, err := uc.journalRepo.SumByPeriod(ctx, tx, period.Key())
	if err != nil {
		return nil, err
	}

	variance := debits.Sub(credits)

	return &TrialBalance{
		PeriodKey: period.Key(),
		Debits:    debits,
		Credits:   credits,
		Variance:  variance,
		Balanced:  variance.Abs().LessThanOrEqual(uc.tolerance),
	}, nil
}
