package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType links a journal entry back to the event that produced it.
type ReferenceType string

const (
	ReferencePayment        ReferenceType = "PAYMENT"
	ReferenceReconciliation ReferenceType = "RECONCILIATION"
	ReferenceDividend       ReferenceType = "DIVIDEND"
	ReferenceManual         ReferenceType = "MANUAL"
)

// IsValid reports whether r is a known reference type.
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferencePayment, ReferenceReconciliation, ReferenceDividend, ReferenceManual:
		return true
	}
	return false
}

// JournalEntry is a single append-only debit or credit line.
type JournalEntry struct {
	ID              string
	PeriodKey       string
	AccountCode     string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	TransactionDate time.Time
	ReferenceType   ReferenceType
	ReferenceID     string
	Description     string
	CreatedBy       string
	CreatedAt       time.Time
}

// Validate enforces the one-sided, non-negative line shape.
func (e *JournalEntry) Validate() error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return ErrInvalidEntry
	}

	if e.Debit.IsZero() == e.Credit.IsZero() {
		return ErrInvalidEntry
	}

	if !e.ReferenceType.IsValid() {
		return ErrInvalidReferenceType
	}

	return nil
}

// Amount returns the non-zero side of the entry.
func (e *JournalEntry) Amount() decimal.Decimal {
	if e.Debit.IsZero() {
		return e.Credit
	}
	return e.Debit
}

// AccountTotals aggregates debits and credits for one account.
type AccountTotals struct {
	AccountCode string
	AccountName string
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

// Net returns the balance in the account's normal direction.
func (t AccountTotals) Net(category AccountCategory) decimal.Decimal {
	if category.DebitNormal() {
		return t.Debits.Sub(t.Credits)
	}
	return t.Credits.Sub(t.Debits)
}
