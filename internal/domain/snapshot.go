package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanBalanceSnapshot is the period-end picture of one loan. There is at most
// one per (LoanID, BalanceDate); only Verified changes after creation.
type LoanBalanceSnapshot struct {
	ID                 string
	LoanID             string
	BalanceDate        time.Time
	OpeningPrincipal   decimal.Decimal
	ClosingPrincipal   decimal.Decimal
	PrincipalPaid      decimal.Decimal
	InterestPaid       decimal.Decimal
	PenaltyPaid        decimal.Decimal
	InterestAccrued    decimal.Decimal
	OutstandingBalance decimal.Decimal
	Verified           bool
	CreatedAt          time.Time
}

// SavingBalanceSnapshot is the period-end picture of one savings account.
type SavingBalanceSnapshot struct {
	ID              string
	SavingAccountID string
	BalanceDate     time.Time
	OpeningBalance  decimal.Decimal
	ClosingBalance  decimal.Decimal
	Deposits        decimal.Decimal
	Withdrawals     decimal.Decimal
	InterestEarned  decimal.Decimal
	Fees            decimal.Decimal
	CreatedAt       time.Time
}

// AnomalyKind names a data-integrity condition observed during processing.
type AnomalyKind string

const (
	AnomalyNegativeLoanBalance   AnomalyKind = "NEGATIVE_LOAN_BALANCE"
	AnomalyNegativeSavingBalance AnomalyKind = "NEGATIVE_SAVING_BALANCE"
)

// IntegrityAnomaly is surfaced to the caller but never aborts an operation.
type IntegrityAnomaly struct {
	EntityType string
	EntityID   string
	Kind       AnomalyKind
	Amount     decimal.Decimal
	Message    string
}
