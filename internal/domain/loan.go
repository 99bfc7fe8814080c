package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusPending    LoanStatus = "PENDING"
	LoanStatusApproved   LoanStatus = "APPROVED"
	LoanStatusActive     LoanStatus = "ACTIVE"
	LoanStatusDefaulted  LoanStatus = "DEFAULTED"
	LoanStatusCompleted  LoanStatus = "COMPLETED"
	LoanStatusRejected   LoanStatus = "REJECTED"
	LoanStatusWrittenOff LoanStatus = "WRITTEN_OFF"
)

// ClosableLoanStatuses are the statuses snapshotted at period end.
var ClosableLoanStatuses = []LoanStatus{LoanStatusActive, LoanStatusDefaulted}

// Loan is a member loan. OutstandingBalance is kept current by payment
// processing; snapshotting reads it as-is.
type Loan struct {
	ID                 string
	MemberID           string
	LoanNumber         string
	PrincipalAmount    decimal.Decimal
	InterestRate       decimal.Decimal // annual, percent
	TermMonths         int
	OutstandingBalance decimal.Decimal
	TotalPaidPrincipal decimal.Decimal
	TotalPaidInterest  decimal.Decimal
	PenaltyBalance     decimal.Decimal
	Status             LoanStatus
	DisbursedAt        *time.Time
	MaturityDate       *time.Time
	LastPaymentAt      *time.Time
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsClosable reports whether the loan takes part in period closing.
func (l *Loan) IsClosable() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusDefaulted
}

// IsOverdue reports whether an active loan is past maturity with money owed.
func (l *Loan) IsOverdue(now time.Time) bool {
	if l.Status != LoanStatusActive || l.MaturityDate == nil {
		return false
	}
	return l.MaturityDate.Before(now) && l.OutstandingBalance.IsPositive()
}

// InterestDue is the interest accrued on the current balance since the last
// payment, or since disbursement when nothing has been paid yet.
func (l *Loan) InterestDue(asOf time.Time) decimal.Decimal {
	since := l.LastPaymentAt
	if since == nil {
		since = l.DisbursedAt
	}
	if since == nil {
		return decimal.Zero
	}

	days := Window{Start: *since, End: asOf}.Days() - 1
	return AccrueInterest(l.OutstandingBalance, l.InterestRate, days)
}

// ApplyAllocation books an allocated payment against the loan balances.
func (l *Loan) ApplyAllocation(a PaymentAllocation, at time.Time) {
	l.PenaltyBalance = l.PenaltyBalance.Sub(a.PenaltyPaid)
	l.OutstandingBalance = l.OutstandingBalance.Sub(a.PrincipalPaid)
	l.TotalPaidPrincipal = l.TotalPaidPrincipal.Add(a.PrincipalPaid)
	l.TotalPaidInterest = l.TotalPaidInterest.Add(a.InterestPaid)
	l.LastPaymentAt = &at
	l.UpdatedAt = at

	if l.OutstandingBalance.IsZero() {
		l.Status = LoanStatusCompleted
	}
}
