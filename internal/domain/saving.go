package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is a cooperative member.
type Member struct {
	ID           string
	MemberNumber string
	Name         string
	Active       bool
	JoinedAt     time.Time
}

// SavingAccount holds a member's savings and share capital.
type SavingAccount struct {
	ID               string
	MemberID         string
	AccountNumber    string
	Balance          decimal.Decimal
	AvailableBalance decimal.Decimal
	ShareCapital     decimal.Decimal
	InterestRate     decimal.Decimal
	Active           bool
	Frozen           bool
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Credit adds amount to both the ledger and available balance.
func (a *SavingAccount) Credit(amount decimal.Decimal, at time.Time) {
	a.Balance = a.Balance.Add(amount)
	a.AvailableBalance = a.AvailableBalance.Add(amount)
	a.Version++
	a.UpdatedAt = at
}
