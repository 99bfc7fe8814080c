package usecase

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a short database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCloseTimeout bounds a whole period close. Exceeding it aborts the
	// transaction; nothing is committed.
	DefaultCloseTimeout = 2 * time.Minute

	// DefaultCloseLockTTL is how long a period close lock is held before it
	// expires on its own.
	DefaultCloseLockTTL = 5 * time.Minute

	// DefaultDividendWorkers bounds parallel dividend pre-computation.
	DefaultDividendWorkers = 8

	// DefaultSnapshotWorkers bounds parallel loan snapshot builds during a close.
	DefaultSnapshotWorkers = 8

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// DefaultTrialBalanceTolerance is the largest |debits - credits| a period may
// carry and still close.
var DefaultTrialBalanceTolerance = decimal.RequireFromString("0.05")

// LedgerCodes are the chart-of-accounts codes the engine posts to.
type LedgerCodes struct {
	Cash            string
	LoansReceivable string
	MemberSavings   string
	DividendPayable string
	InterestIncome  string
	PenaltyIncome   string
}

// DefaultLedgerCodes follows the 1x/2x/3x/4x/5x prefix convention.
var DefaultLedgerCodes = LedgerCodes{
	Cash:            "1100",
	LoansReceivable: "1300",
	MemberSavings:   "2100",
	DividendPayable: "2300",
	InterestIncome:  "4100",
	PenaltyIncome:   "4200",
}
