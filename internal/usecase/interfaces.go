package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// Repository methods that accept a Transaction run inside it; a nil
// Transaction means "outside any transaction" and is only valid for reads.

// LedgerAccountRepository defines data access for the chart of accounts.
type LedgerAccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.LedgerAccount) error
	GetByCode(ctx context.Context, tx Transaction, code string) (*domain.LedgerAccount, error)
	List(ctx context.Context) ([]*domain.LedgerAccount, error)
	Delete(ctx context.Context, tx Transaction, code string) error
	HasEntries(ctx context.Context, tx Transaction, code string) (bool, error)
}

// JournalRepository defines data access for journal entries. Date ranges
// are half-open: start inclusive, end exclusive.
type JournalRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	SumByPeriod(ctx context.Context, tx Transaction, periodKey string) (debits, credits decimal.Decimal, err error)
	SumByAccountForPeriod(ctx context.Context, periodKey string) ([]domain.AccountTotals, error)
	SumByAccountBetween(ctx context.Context, start, end time.Time) ([]domain.AccountTotals, error)
	SumByAccountUntil(ctx context.Context, asOf time.Time) ([]domain.AccountTotals, error)
}

// FiscalPeriodRepository defines data access for fiscal periods.
type FiscalPeriodRepository interface {
	// GetForUpdate returns the period row locked for the transaction,
	// creating it as OPEN first if it does not exist.
	GetForUpdate(ctx context.Context, tx Transaction, period domain.Period) (*domain.FiscalPeriod, error)
	Get(ctx context.Context, tx Transaction, period domain.Period) (*domain.FiscalPeriod, error)
	Update(ctx context.Context, tx Transaction, fp *domain.FiscalPeriod) error
	List(ctx context.Context, limit, offset int) ([]*domain.FiscalPeriod, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	ListByStatuses(ctx context.Context, tx Transaction, statuses []domain.LoanStatus) ([]*domain.Loan, error)
	UpdateBalances(ctx context.Context, tx Transaction, loan *domain.Loan) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
	ListOverdue(ctx context.Context, tx Transaction, now time.Time) ([]*domain.Loan, error)
}

// LoanPaymentRepository defines data access for loan payments.
// ListCompletedBetween matches payment dates in [start, end).
type LoanPaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.LoanPayment) error
	ListCompletedBetween(ctx context.Context, tx Transaction, loanID string, start, end time.Time, types []domain.PaymentType) ([]*domain.LoanPayment, error)
	SumInterestPaidByMember(ctx context.Context, tx Transaction, memberID string, year int) (decimal.Decimal, error)
}

// LoanSnapshotRepository defines data access for loan balance snapshots.
type LoanSnapshotRepository interface {
	Exists(ctx context.Context, tx Transaction, loanID string, balanceDate time.Time) (bool, error)
	// Create returns domain.ErrSnapshotExists on a (loan, date) collision.
	Create(ctx context.Context, tx Transaction, snapshot *domain.LoanBalanceSnapshot) error
	ListByDate(ctx context.Context, balanceDate time.Time) ([]*domain.LoanBalanceSnapshot, error)
	MarkVerified(ctx context.Context, tx Transaction, balanceDate time.Time) (int64, error)
}

// SavingAccountRepository defines data access for savings accounts.
type SavingAccountRepository interface {
	ListActive(ctx context.Context, tx Transaction) ([]*domain.SavingAccount, error)
	GetByMember(ctx context.Context, tx Transaction, memberID string) (*domain.SavingAccount, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.SavingAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, account *domain.SavingAccount) error
}

// SavingSnapshotRepository defines data access for savings snapshots.
type SavingSnapshotRepository interface {
	Exists(ctx context.Context, tx Transaction, accountID string, balanceDate time.Time) (bool, error)
	// Create returns domain.ErrSnapshotExists on an (account, date) collision.
	Create(ctx context.Context, tx Transaction, snapshot *domain.SavingBalanceSnapshot) error
}

// MemberRepository defines data access for members.
type MemberRepository interface {
	ListActive(ctx context.Context, tx Transaction) ([]*domain.Member, error)
}

// DividendRepository defines data access for dividend distributions.
type DividendRepository interface {
	GetByYear(ctx context.Context, year int) (*domain.DividendDistribution, error)
	GetByYearForUpdate(ctx context.Context, tx Transaction, year int) (*domain.DividendDistribution, error)
	// Create returns domain.ErrDistributionExists when the year is taken.
	Create(ctx context.Context, tx Transaction, dist *domain.DividendDistribution) error
	Update(ctx context.Context, tx Transaction, dist *domain.DividendDistribution) error
	CreateRecipient(ctx context.Context, tx Transaction, recipient *domain.DividendRecipient) error
	ListRecipients(ctx context.Context, tx Transaction, distributionID string) ([]*domain.DividendRecipient, error)
	MarkRecipientPaid(ctx context.Context, tx Transaction, id string, paidAt time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRecorder records successful mutations. It runs after commit, outside
// the financial transaction.
type AuditRecorder interface {
	Record(ctx context.Context, log *domain.AuditLog) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs a whole unit of work on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// PeriodLocker provides cross-process mutual exclusion per key. TryLock does
// not wait: ok is false when another holder owns the key.
type PeriodLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/iho/coopledger/internal/usecase AuditRecorder,PeriodLocker
