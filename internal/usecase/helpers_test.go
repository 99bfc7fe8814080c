package usecase_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
	"github.com/iho/coopledger/internal/usecase/mocks"
)

var (
	admin  = domain.Actor{ID: "alice", Role: domain.RoleAdmin}
	viewer = domain.Actor{ID: "victor", Role: domain.RoleViewer}
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// store bundles the in-memory repositories shared by the use case tests.
type store struct {
	txMgr       *mocks.MockTransactionManager
	idGen       *mocks.MockIDGenerator
	accounts    *mocks.MockLedgerAccountRepository
	journal     *mocks.MockJournalRepository
	periods     *mocks.MockFiscalPeriodRepository
	loans       *mocks.MockLoanRepository
	payments    *mocks.MockLoanPaymentRepository
	loanSnaps   *mocks.MockLoanSnapshotRepository
	savings     *mocks.MockSavingAccountRepository
	savingSnaps *mocks.MockSavingSnapshotRepository
	dividends   *mocks.MockDividendRepository
	outbox      *mocks.MockOutboxRepository
}

func newStore() *store {
	return &store{
		txMgr:       mocks.NewMockTransactionManager(),
		idGen:       mocks.NewMockIDGenerator(),
		accounts:    mocks.NewMockLedgerAccountRepository(),
		journal:     mocks.NewMockJournalRepository(),
		periods:     mocks.NewMockFiscalPeriodRepository(),
		loans:       mocks.NewMockLoanRepository(),
		payments:    mocks.NewMockLoanPaymentRepository(),
		loanSnaps:   mocks.NewMockLoanSnapshotRepository(),
		savings:     mocks.NewMockSavingAccountRepository(),
		savingSnaps: mocks.NewMockSavingSnapshotRepository(),
		dividends:   mocks.NewMockDividendRepository(),
		outbox:      mocks.NewMockOutboxRepository(),
	}
}

func (s *store) periodDeps() usecase.PeriodDeps {
	logger := zerolog.Nop()
	return usecase.PeriodDeps{
		TxManager:     s.txMgr,
		PeriodRepo:    s.periods,
		LoanRepo:      s.loans,
		SavingRepo:    s.savings,
		LoanSnapshots: s.loanSnaps,
		OutboxRepo:    s.outbox,
		TrialBalance:  usecase.NewTrialBalanceUseCase(s.journal, usecase.DefaultTrialBalanceTolerance),
		LoanEngine:    usecase.NewLoanSnapshotEngine(s.payments, s.loanSnaps, s.idGen, logger),
		SavingEngine:  usecase.NewSavingSnapshotEngine(s.savingSnaps, s.idGen, logger),
		IDGen:         s.idGen,
		Logger:        logger,
	}
}

func (s *store) periodUseCase(t *testing.T, mutate ...func(*usecase.PeriodDeps)) *usecase.PeriodUseCase {
	t.Helper()
	deps := s.periodDeps()
	for _, m := range mutate {
		m(&deps)
	}
	return usecase.NewPeriodUseCase(deps, usecase.PeriodConfig{Workers: 4})
}

// postBalanced puts a balanced pair of journal lines into periodKey.
func (s *store) postBalanced(t *testing.T, periodKey string, debit, credit string) {
	t.Helper()
	at := date(2025, time.April, 10)
	for _, e := range []*domain.JournalEntry{
		{ID: s.idGen.Generate(), PeriodKey: periodKey, AccountCode: "1100", Debit: d(debit), Credit: decimal.Zero, TransactionDate: at, ReferenceType: domain.ReferenceManual},
		{ID: s.idGen.Generate(), PeriodKey: periodKey, AccountCode: "4100", Debit: decimal.Zero, Credit: d(credit), TransactionDate: at, ReferenceType: domain.ReferenceManual},
	} {
		if err := s.journal.Create(t.Context(), nil, e); err != nil {
			t.Fatalf("seed journal: %v", err)
		}
	}
}

func activeLoan(id string, outstanding, rate string) *domain.Loan {
	return &domain.Loan{
		ID:                 id,
		MemberID:           "member-" + id,
		LoanNumber:         "LN-" + id,
		PrincipalAmount:    d(outstanding),
		InterestRate:       d(rate),
		OutstandingBalance: d(outstanding),
		TotalPaidPrincipal: decimal.Zero,
		TotalPaidInterest:  decimal.Zero,
		PenaltyBalance:     decimal.Zero,
		Status:             domain.LoanStatusActive,
		DisbursedAt:        ptr(date(2025, time.January, 1)),
		MaturityDate:       ptr(date(2026, time.January, 1)),
	}
}
