package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionStatus is the state of a yearly dividend run.
type DistributionStatus string

const (
	DistributionStatusPending  DistributionStatus = "PENDING"
	DistributionStatusApproved DistributionStatus = "APPROVED"
)

// DividendDistribution is the yearly dividend run. One per year; it goes from
// PENDING to APPROVED exactly once.
type DividendDistribution struct {
	ID                 string
	Year               int
	DividendRate       decimal.Decimal
	AverageReturnRate  decimal.Decimal
	Status             DistributionStatus
	TotalShareCapital  decimal.Decimal
	TotalInterestPaid  decimal.Decimal
	TotalDividend      decimal.Decimal
	TotalAverageReturn decimal.Decimal
	TotalPayout        decimal.Decimal
	RecipientCount     int
	CalculatedBy       string
	CalculatedAt       time.Time
	DistributedBy      string
	DistributedAt      *time.Time
}

// IsApproved reports whether payouts have been posted.
func (d *DividendDistribution) IsApproved() bool {
	return d.Status == DistributionStatusApproved
}

// Accumulate adds one recipient into the distribution totals.
func (d *DividendDistribution) Accumulate(r *DividendRecipient) {
	d.TotalShareCapital = d.TotalShareCapital.Add(r.ShareCapital)
	d.TotalInterestPaid = d.TotalInterestPaid.Add(r.InterestPaid)
	d.TotalDividend = d.TotalDividend.Add(r.DividendAmount)
	d.TotalAverageReturn = d.TotalAverageReturn.Add(r.AverageReturnAmount)
	d.TotalPayout = d.TotalPayout.Add(r.TotalPayout)
	d.RecipientCount++
}

// Approve marks the distribution paid out.
func (d *DividendDistribution) Approve(actor string, at time.Time) error {
	if d.IsApproved() {
		return ErrDistributionAlreadyApproved
	}
	d.Status = DistributionStatusApproved
	d.DistributedBy = actor
	d.DistributedAt = &at
	return nil
}

// DividendRecipient is a member's share of a distribution, frozen at
// calculation time.
type DividendRecipient struct {
	ID                  string
	DistributionID      string
	MemberID            string
	SavingAccountID     string
	ShareCapital        decimal.Decimal
	InterestPaid        decimal.Decimal
	DividendAmount      decimal.Decimal
	AverageReturnAmount decimal.Decimal
	TotalPayout         decimal.Decimal
	PaidAt              *time.Time
	CreatedAt           time.Time
}

// DividendAmounts is the pure result of a dividend computation.
type DividendAmounts struct {
	Dividend      decimal.Decimal
	AverageReturn decimal.Decimal
	Total         decimal.Decimal
}

// ComputeDividend applies the dividend rate to share capital and the
// average-return rate to interest paid. Rates are percentages.
func ComputeDividend(shareCapital, interestPaid, dividendRate, averageReturnRate decimal.Decimal) DividendAmounts {
	dividend := PercentOf(shareCapital, dividendRate)
	averageReturn := PercentOf(interestPaid, averageReturnRate)

	return DividendAmounts{
		Dividend:      dividend,
		AverageReturn: averageReturn,
		Total:         dividend.Add(averageReturn),
	}
}
