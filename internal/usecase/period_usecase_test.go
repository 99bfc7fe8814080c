package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
	"github.com/iho/coopledger/internal/usecase/mocks"
)

func seedApril(t *testing.T, s *store) {
	t.Helper()
	s.postBalanced(t, "2025-04", "100.00", "100.00")
	s.loans.Add(activeLoan("L1", "20000", "12"))
	require.NoError(t, s.payments.Create(t.Context(), nil, &domain.LoanPayment{
		ID:            "P1",
		LoanID:        "L1",
		MemberID:      "member-L1",
		PaymentType:   domain.PaymentTypeRepayment,
		Status:        domain.PaymentStatusCompleted,
		Amount:        d("1200"),
		PrincipalPaid: d("1000"),
		InterestPaid:  d("200"),
		PenaltyPaid:   d("0"),
		PaymentDate:   date(2025, time.April, 15),
	}))
	s.savings.Add(&domain.SavingAccount{ID: "SA1", MemberID: "member-L1", Balance: d("500"), Active: true})
}

func TestPeriodUseCase_CloseMonth(t *testing.T) {
	s := newStore()
	seedApril(t, s)
	uc := s.periodUseCase(t)

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)

	assert.Equal(t, "2025-04", summary.PeriodKey)
	assert.Equal(t, 1, summary.ProcessedLoans)
	assert.Equal(t, 1, summary.ProcessedSavings)
	assert.Equal(t, 0, summary.SkippedLoans)
	assert.True(t, summary.TotalLoanBalance.Equal(d("20000")))
	assert.True(t, summary.TotalSavingBalance.Equal(d("500")))
	assert.Empty(t, summary.Anomalies)
	assert.Empty(t, summary.Warnings)

	snaps, err := s.loanSnaps.ListByDate(t.Context(), date(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	snap := snaps[0]
	assert.Equal(t, "197.26", snap.InterestAccrued.StringFixed(2))
	assert.Equal(t, "21000.00", snap.OpeningPrincipal.StringFixed(2))
	assert.Equal(t, "20000.00", snap.ClosingPrincipal.StringFixed(2))
	assert.Equal(t, "1000.00", snap.PrincipalPaid.StringFixed(2))
	assert.Equal(t, "200.00", snap.InterestPaid.StringFixed(2))
	assert.False(t, snap.Verified)

	stored := s.periods.Stored(domain.Period{Month: 4, Year: 2025})
	require.NotNil(t, stored)
	assert.Equal(t, domain.PeriodStatusClosed, stored.Status)
	assert.Equal(t, "alice", stored.ClosedBy)
	assert.NotNil(t, stored.ClosedAt)

	events := s.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypePeriodClosed, events[0].EventType)
	assert.Equal(t, 1, s.txMgr.Commits())
}

func TestPeriodUseCase_CloseMonthTwice(t *testing.T) {
	s := newStore()
	seedApril(t, s)
	uc := s.periodUseCase(t)

	_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)

	_, err = uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.ErrorIs(t, err, domain.ErrPeriodAlreadyClosed)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, s.loanSnaps.Count())
	assert.Equal(t, 1, s.savingSnaps.Count())
	assert.Equal(t, 1, s.txMgr.Commits())
}

func TestPeriodUseCase_TrialBalanceGate(t *testing.T) {
	tests := []struct {
		name      string
		debit     string
		credit    string
		wantError bool
	}{
		{name: "exactly balanced", debit: "100.00", credit: "100.00"},
		{name: "within tolerance", debit: "100.00", credit: "99.96"},
		{name: "at tolerance", debit: "100.00", credit: "99.95"},
		{name: "outside tolerance", debit: "100.00", credit: "99.00", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			s.postBalanced(t, "2025-04", tt.debit, tt.credit)
			s.loans.Add(activeLoan("L1", "1000", "12"))
			uc := s.periodUseCase(t)

			_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
			if !tt.wantError {
				require.NoError(t, err)
				return
			}

			var tbErr *domain.TrialBalanceError
			require.True(t, errors.As(err, &tbErr), "expected TrialBalanceError, got %v", err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, "1.00", tbErr.Variance.StringFixed(2))

			stored := s.periods.Stored(domain.Period{Month: 4, Year: 2025})
			require.NotNil(t, stored)
			assert.Equal(t, domain.PeriodStatusOpen, stored.Status)
			assert.Equal(t, 0, s.loanSnaps.Count())
			assert.Equal(t, 0, s.txMgr.Commits())
		})
	}
}

func TestPeriodUseCase_NegativeLoanBalanceIsAnomaly(t *testing.T) {
	s := newStore()
	loan := activeLoan("L-neg", "0", "12")
	loan.OutstandingBalance = d("-50")
	s.loans.Add(loan)
	uc := s.periodUseCase(t)

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)

	require.Len(t, summary.Anomalies, 1)
	assert.Equal(t, domain.AnomalyNegativeLoanBalance, summary.Anomalies[0].Kind)
	assert.Equal(t, "L-neg", summary.Anomalies[0].EntityID)
	assert.Equal(t, 1, summary.ProcessedLoans)

	snaps, err := s.loanSnaps.ListByDate(t.Context(), date(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].InterestAccrued.IsZero())
}

func TestPeriodUseCase_SkipsExistingSnapshots(t *testing.T) {
	s := newStore()
	s.loans.Add(activeLoan("L1", "1000", "12"), activeLoan("L2", "2000", "12"))
	require.NoError(t, s.loanSnaps.Create(t.Context(), nil, &domain.LoanBalanceSnapshot{
		ID:          "existing",
		LoanID:      "L1",
		BalanceDate: date(2025, time.April, 30),
	}))
	uc := s.periodUseCase(t)

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedLoans)
	assert.Equal(t, 1, summary.ProcessedLoans)
	assert.True(t, summary.TotalLoanBalance.Equal(d("2000")))
	assert.Equal(t, 2, s.loanSnaps.Count())
}

func TestPeriodUseCase_ZeroWorkersUsesSnapshotDefault(t *testing.T) {
	s := newStore()
	for i := range usecase.DefaultSnapshotWorkers * 2 {
		s.loans.Add(activeLoan(fmt.Sprintf("L%02d", i), "100", "12"))
	}
	uc := usecase.NewPeriodUseCase(s.periodDeps(), usecase.PeriodConfig{})

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)
	assert.Equal(t, usecase.DefaultSnapshotWorkers*2, summary.ProcessedLoans)
	assert.Equal(t, usecase.DefaultSnapshotWorkers*2, s.loanSnaps.Count())
}

func TestPeriodUseCase_OnlyClosableLoansAreSnapshotted(t *testing.T) {
	s := newStore()
	defaulted := activeLoan("L-def", "300", "12")
	defaulted.Status = domain.LoanStatusDefaulted
	completed := activeLoan("L-done", "0", "12")
	completed.Status = domain.LoanStatusCompleted
	s.loans.Add(activeLoan("L-act", "100", "12"), defaulted, completed)
	uc := s.periodUseCase(t)

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ProcessedLoans)
	assert.True(t, summary.TotalLoanBalance.Equal(d("400")))
}

func TestPeriodUseCase_FailingLoanAbortsClose(t *testing.T) {
	s := newStore()
	s.loans.Add(activeLoan("L1", "1000", "12"), activeLoan("L2", "1000", "12"))
	boom := errors.New("disk full")
	s.loanSnaps.CreateFunc = func(ctx context.Context, tx usecase.Transaction, snapshot *domain.LoanBalanceSnapshot) error {
		return boom
	}
	uc := s.periodUseCase(t)

	_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.ErrorIs(t, err, boom)

	stored := s.periods.Stored(domain.Period{Month: 4, Year: 2025})
	require.NotNil(t, stored)
	assert.Equal(t, domain.PeriodStatusOpen, stored.Status)
	assert.Equal(t, 0, s.txMgr.Commits())
	require.Len(t, s.txMgr.Transactions, 1)
	assert.True(t, s.txMgr.Transactions[0].RolledBack)
	assert.Empty(t, s.outbox.Events())
}

func TestPeriodUseCase_CloseValidation(t *testing.T) {
	s := newStore()
	uc := s.periodUseCase(t)

	_, err := uc.CloseMonth(t.Context(), 13, 2025, admin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.CloseMonth(t.Context(), 4, 2025, viewer)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Empty(t, s.txMgr.Transactions)
}

func TestPeriodUseCase_CloseLock(t *testing.T) {
	t.Run("held by another closer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locker := mocks.NewMockPeriodLocker(ctrl)
		locker.EXPECT().
			TryLock(gomock.Any(), "close:2025-04", usecase.DefaultCloseLockTTL).
			Return(nil, false, nil)

		s := newStore()
		uc := s.periodUseCase(t, func(deps *usecase.PeriodDeps) { deps.Locker = locker })

		_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
		require.ErrorIs(t, err, domain.ErrCloseInProgress)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, s.txMgr.Transactions)
	})

	t.Run("released after close", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locker := mocks.NewMockPeriodLocker(ctrl)
		released := false
		locker.EXPECT().
			TryLock(gomock.Any(), "close:2025-04", usecase.DefaultCloseLockTTL).
			Return(func(context.Context) error { released = true; return nil }, true, nil)

		s := newStore()
		uc := s.periodUseCase(t, func(deps *usecase.PeriodDeps) { deps.Locker = locker })

		_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("locker failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		locker := mocks.NewMockPeriodLocker(ctrl)
		locker.EXPECT().TryLock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))

		s := newStore()
		uc := s.periodUseCase(t, func(deps *usecase.PeriodDeps) { deps.Locker = locker })

		_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis down")
	})
}

func TestPeriodUseCase_AuditFailureIsWarning(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockAuditRecorder(ctrl)
	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, log *domain.AuditLog) error {
		assert.Equal(t, string(domain.AuditActionPeriodClose), log.Action)
		assert.Equal(t, "2025-04", log.EntityID)
		assert.Equal(t, "alice", log.Actor)
		return errors.New("audit store unavailable")
	})

	s := newStore()
	uc := s.periodUseCase(t, func(deps *usecase.PeriodDeps) { deps.Audit = recorder })

	summary, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "audit store unavailable")

	stored := s.periods.Stored(domain.Period{Month: 4, Year: 2025})
	assert.Equal(t, domain.PeriodStatusClosed, stored.Status)
}

func TestPeriodUseCase_RetriesTransientFailure(t *testing.T) {
	errTransient := errors.New("serialization failure")

	s := newStore()
	s.periods.Add(&domain.FiscalPeriod{ID: "p", Month: 4, Year: 2025, Status: domain.PeriodStatusOpen})
	calls := 0
	s.periods.GetForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error) {
		calls++
		if calls == 1 {
			return nil, errTransient
		}
		return s.periods.Get(ctx, tx, period)
	}
	retrier := &mocks.MockRetrier{Attempts: 3, RetryIf: func(err error) bool { return errors.Is(err, errTransient) }}
	uc := s.periodUseCase(t, func(deps *usecase.PeriodDeps) { deps.Retrier = retrier })

	_, err := uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, retrier.Calls)
	assert.Len(t, s.txMgr.Transactions, 2)
	assert.Equal(t, 1, s.txMgr.Commits())
}

func TestPeriodUseCase_ConfirmPeriod(t *testing.T) {
	s := newStore()
	seedApril(t, s)
	uc := s.periodUseCase(t)

	_, err := uc.ConfirmPeriod(t.Context(), 4, 2025, admin)
	require.ErrorIs(t, err, domain.ErrPeriodNotFound)

	s.periods.Add(&domain.FiscalPeriod{ID: "p", Month: 4, Year: 2025, Status: domain.PeriodStatusOpen})
	_, err = uc.ConfirmPeriod(t.Context(), 4, 2025, admin)
	require.ErrorIs(t, err, domain.ErrPeriodNotClosed)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.CloseMonth(t.Context(), 4, 2025, admin)
	require.NoError(t, err)

	summary, err := uc.ConfirmPeriod(t.Context(), 4, 2025, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.VerifiedSnapshots)

	snaps, err := s.loanSnaps.ListByDate(t.Context(), date(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Verified)

	stored := s.periods.Stored(domain.Period{Month: 4, Year: 2025})
	assert.True(t, stored.IsConfirmed())
	assert.Equal(t, "alice", stored.ConfirmedBy)

	_, err = uc.ConfirmPeriod(t.Context(), 4, 2025, admin)
	require.ErrorIs(t, err, domain.ErrPeriodAlreadyConfirmed)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPeriodUseCase_ReadOperations(t *testing.T) {
	s := newStore()
	s.periods.Add(&domain.FiscalPeriod{ID: "a", Month: 3, Year: 2025, Status: domain.PeriodStatusClosed})
	s.periods.Add(&domain.FiscalPeriod{ID: "b", Month: 4, Year: 2025, Status: domain.PeriodStatusOpen})
	uc := s.periodUseCase(t)

	fp, err := uc.GetPeriod(t.Context(), 3, 2025)
	require.NoError(t, err)
	assert.True(t, fp.IsClosed())

	_, err = uc.GetPeriod(t.Context(), 5, 2025)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	periods, err := uc.ListPeriods(t.Context(), 0, 0)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, 4, periods[0].Month)
}
