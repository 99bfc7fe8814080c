package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies a loan payment.
type PaymentType string

const (
	PaymentTypeRepayment    PaymentType = "REPAYMENT"
	PaymentTypeClosure      PaymentType = "CLOSURE"
	PaymentTypeDisbursement PaymentType = "DISBURSEMENT"
)

// PaymentStatus is the approval state of a loan payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
)

// SettlementPaymentTypes are the payment types counted by period snapshots.
var SettlementPaymentTypes = []PaymentType{PaymentTypeRepayment, PaymentTypeClosure}

// LoanPayment is an approved or pending payment against a loan, with its
// penalty/interest/principal breakdown.
type LoanPayment struct {
	ID            string
	LoanID        string
	MemberID      string
	PaymentType   PaymentType
	Status        PaymentStatus
	Amount        decimal.Decimal
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	PenaltyPaid   decimal.Decimal
	PaymentDate   time.Time
	ApprovedBy    string
	CreatedAt     time.Time
}

// PaymentAllocation is the split of one payment across what is owed.
type PaymentAllocation struct {
	PenaltyPaid   decimal.Decimal
	InterestPaid  decimal.Decimal
	PrincipalPaid decimal.Decimal
	Unallocated   decimal.Decimal
}

// Allocated is the part of the payment that was applied.
func (a PaymentAllocation) Allocated() decimal.Decimal {
	return a.PenaltyPaid.Add(a.InterestPaid).Add(a.PrincipalPaid)
}

// AllocatePayment splits amount across penalty, then interest, then
// principal, each capped at what remains of the payment. Whatever exceeds
// the principal due is returned as Unallocated. The order is fixed.
func AllocatePayment(amount, penaltyDue, interestDue, principalDue decimal.Decimal) (PaymentAllocation, error) {
	if !amount.IsPositive() {
		return PaymentAllocation{}, ErrInvalidAmount
	}

	remaining := amount
	take := func(due decimal.Decimal) decimal.Decimal {
		if !due.IsPositive() {
			return decimal.Zero
		}
		paid := decimal.Min(due, remaining)
		remaining = remaining.Sub(paid)
		return paid
	}

	alloc := PaymentAllocation{}
	alloc.PenaltyPaid = take(penaltyDue)
	alloc.InterestPaid = take(interestDue)
	alloc.PrincipalPaid = take(principalDue)
	alloc.Unallocated = remaining

	return alloc, nil
}
