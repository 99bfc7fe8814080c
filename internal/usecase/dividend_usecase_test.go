package usecase_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
	"github.com/iho/coopledger/internal/usecase/mocks"
)

type dividendFixture struct {
	*store
	members *mocks.MockMemberRepository
	uc      *usecase.DividendUseCase
}

func newDividendFixture(t *testing.T, members ...*domain.Member) *dividendFixture {
	t.Helper()
	s := newStore()
	memberRepo := mocks.NewMockMemberRepository(members...)
	uc := usecase.NewDividendUseCase(usecase.DividendDeps{
		TxManager:  s.txMgr,
		Dividends:  s.dividends,
		Members:    memberRepo,
		Savings:    s.savings,
		Payments:   s.payments,
		Journal:    s.journal,
		Periods:    s.periods,
		OutboxRepo: s.outbox,
		IDGen:      s.idGen,
		Logger:     zerolog.Nop(),
		Workers:    2,
	})
	return &dividendFixture{store: s, members: memberRepo, uc: uc}
}

func (f *dividendFixture) interest(t *testing.T, memberID, amount string, at time.Time) {
	t.Helper()
	require.NoError(t, f.payments.Create(t.Context(), nil, &domain.LoanPayment{
		ID:           f.idGen.Generate(),
		LoanID:       "loan-" + memberID,
		MemberID:     memberID,
		PaymentType:  domain.PaymentTypeRepayment,
		Status:       domain.PaymentStatusCompleted,
		InterestPaid: d(amount),
		PaymentDate:  at,
	}))
}

func TestDividendUseCase_CalculateDividends(t *testing.T) {
	f := newDividendFixture(t,
		&domain.Member{ID: "m1", Active: true},
		&domain.Member{ID: "m2", Active: true},
		&domain.Member{ID: "m3", Active: false},
	)
	f.savings.Add(
		&domain.SavingAccount{ID: "sa-1", MemberID: "m1", Balance: d("500"), ShareCapital: d("1000"), Active: true},
		&domain.SavingAccount{ID: "sa-2", MemberID: "m2", Balance: d("10"), ShareCapital: d("0"), Active: true},
		&domain.SavingAccount{ID: "sa-3", MemberID: "m3", Balance: d("10"), ShareCapital: d("9000"), Active: true},
	)
	f.interest(t, "m1", "150", date(2024, time.March, 3))
	f.interest(t, "m1", "50", date(2024, time.November, 3))
	f.interest(t, "m1", "999", date(2023, time.December, 31))

	draft, err := f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	require.NoError(t, err)

	dist := draft.Distribution
	assert.Equal(t, domain.DistributionStatusPending, dist.Status)
	assert.Equal(t, 1, dist.RecipientCount)
	assert.Equal(t, "70.00", dist.TotalPayout.StringFixed(2))
	assert.Equal(t, "50.00", dist.TotalDividend.StringFixed(2))
	assert.Equal(t, "20.00", dist.TotalAverageReturn.StringFixed(2))
	assert.Equal(t, "alice", dist.CalculatedBy)

	require.Len(t, draft.Recipients, 1)
	r := draft.Recipients[0]
	assert.Equal(t, "m1", r.MemberID)
	assert.Equal(t, "sa-1", r.SavingAccountID)
	assert.Equal(t, "200.00", r.InterestPaid.StringFixed(2))
	assert.Nil(t, r.PaidAt)

	stored, err := f.uc.GetDistribution(t.Context(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "70.00", stored.TotalPayout.StringFixed(2))

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeDividendCalculated, events[0].EventType)

	_, err = f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	assert.ErrorIs(t, err, domain.ErrDistributionExists)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDividendUseCase_CalculateValidation(t *testing.T) {
	f := newDividendFixture(t)

	tests := []struct {
		name    string
		year    int
		divRate string
		avgRate string
		actor   domain.Actor
		want    error
	}{
		{name: "rate above 100", year: 2024, divRate: "101", avgRate: "10", actor: admin, want: domain.ErrValidation},
		{name: "negative rate", year: 2024, divRate: "5", avgRate: "-1", actor: admin, want: domain.ErrValidation},
		{name: "bad year", year: 1800, divRate: "5", avgRate: "10", actor: admin, want: domain.ErrValidation},
		{name: "viewer", year: 2024, divRate: "5", avgRate: "10", actor: viewer, want: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CalculateDividends(t.Context(), tt.year, d(tt.divRate), d(tt.avgRate), tt.actor)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.txMgr.Transactions)
}

func TestDividendUseCase_DistributeDividends(t *testing.T) {
	f := newDividendFixture(t,
		&domain.Member{ID: "m3", Active: true},
		&domain.Member{ID: "m1", Active: true},
		&domain.Member{ID: "m2", Active: true},
	)
	f.savings.Add(
		&domain.SavingAccount{ID: "sa-3", MemberID: "m3", Balance: d("0"), AvailableBalance: d("0"), ShareCapital: d("300"), Active: true},
		&domain.SavingAccount{ID: "sa-1", MemberID: "m1", Balance: d("500"), AvailableBalance: d("400"), ShareCapital: d("1000"), Active: true},
		&domain.SavingAccount{ID: "sa-2", MemberID: "m2", Balance: d("0"), AvailableBalance: d("0"), ShareCapital: d("200"), Active: true},
	)
	f.interest(t, "m1", "200", date(2024, time.June, 1))

	_, err := f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	require.NoError(t, err)

	result, err := f.uc.DistributeDividends(t.Context(), 2024, admin)
	require.NoError(t, err)

	assert.Equal(t, 3, result.PaidRecipients)
	// 70.00 + 15.00 + 10.00
	assert.Equal(t, "95.00", result.TotalPaid.StringFixed(2))
	assert.Equal(t, domain.DistributionStatusApproved, result.Distribution.Status)
	assert.Equal(t, "alice", result.Distribution.DistributedBy)
	assert.NotNil(t, result.Distribution.DistributedAt)

	sa1 := f.savings.Stored("sa-1")
	assert.Equal(t, "570.00", sa1.Balance.StringFixed(2))
	assert.Equal(t, "470.00", sa1.AvailableBalance.StringFixed(2))

	require.Len(t, f.savings.LockedIDs, 1)
	assert.Equal(t, []string{"sa-1", "sa-2", "sa-3"}, f.savings.LockedIDs[0])

	entries := f.journal.Entries()
	require.Len(t, entries, 6)
	var payable, savings int
	for _, e := range entries {
		assert.Equal(t, domain.ReferenceDividend, e.ReferenceType)
		require.NoError(t, e.Validate())
		switch e.AccountCode {
		case "2300":
			assert.True(t, e.Credit.IsZero())
			payable++
		case "2100":
			assert.True(t, e.Debit.IsZero())
			savings++
		default:
			t.Errorf("unexpected account %s", e.AccountCode)
		}
	}
	assert.Equal(t, 3, payable)
	assert.Equal(t, 3, savings)

	for _, r := range f.dividends.Recipients(result.Distribution.ID) {
		assert.NotNil(t, r.PaidAt, "recipient %s not marked paid", r.MemberID)
	}

	_, err = f.uc.DistributeDividends(t.Context(), 2024, admin)
	assert.ErrorIs(t, err, domain.ErrDistributionAlreadyApproved)
	assert.Equal(t, "570.00", f.savings.Stored("sa-1").Balance.StringFixed(2))
}

func TestDividendUseCase_DistributeMissingDistribution(t *testing.T) {
	f := newDividendFixture(t)

	_, err := f.uc.DistributeDividends(t.Context(), 2024, admin)
	assert.ErrorIs(t, err, domain.ErrDistributionNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDividendUseCase_DistributeWithoutSavingAccount(t *testing.T) {
	f := newDividendFixture(t, &domain.Member{ID: "m4", Active: true})
	f.interest(t, "m4", "100", date(2024, time.February, 1))

	draft, err := f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	require.NoError(t, err)
	require.Len(t, draft.Recipients, 1)
	assert.Equal(t, "10.00", draft.Recipients[0].TotalPayout.StringFixed(2))

	commitsBefore := f.txMgr.Commits()
	_, err = f.uc.DistributeDividends(t.Context(), 2024, admin)
	assert.ErrorIs(t, err, domain.ErrSavingAccountNotFound)
	assert.Equal(t, commitsBefore, f.txMgr.Commits())
	assert.Empty(t, f.journal.Entries())
}

func TestDividendUseCase_DistributeIntoClosedPeriod(t *testing.T) {
	f := newDividendFixture(t, &domain.Member{ID: "m1", Active: true})
	f.savings.Add(&domain.SavingAccount{ID: "sa-1", MemberID: "m1", Balance: d("500"), AvailableBalance: d("500"), ShareCapital: d("1000"), Active: true})

	_, err := f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	require.NoError(t, err)

	current := domain.PeriodOf(time.Now().UTC())
	f.periods.Add(&domain.FiscalPeriod{ID: "p-current", Month: current.Month, Year: current.Year, Status: domain.PeriodStatusClosed})

	commitsBefore := f.txMgr.Commits()
	_, err = f.uc.DistributeDividends(t.Context(), 2024, admin)
	require.ErrorIs(t, err, domain.ErrPeriodAlreadyClosed)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, commitsBefore, f.txMgr.Commits())
	assert.Empty(t, f.journal.Entries())
	assert.Equal(t, "500.00", f.savings.Stored("sa-1").Balance.StringFixed(2))

	dist, err := f.uc.GetDistribution(t.Context(), 2024)
	require.NoError(t, err)
	assert.Equal(t, domain.DistributionStatusPending, dist.Status)
}

func TestDividendUseCase_ManualAccrualNetsPayable(t *testing.T) {
	f := newDividendFixture(t, &domain.Member{ID: "m1", Active: true})
	f.savings.Add(&domain.SavingAccount{ID: "sa-1", MemberID: "m1", Balance: d("500"), AvailableBalance: d("500"), ShareCapital: d("1000"), Active: true})
	f.accounts.Add(
		&domain.LedgerAccount{Code: "2300", Name: "Dividend Payable", Category: domain.CategoryLiability},
		&domain.LedgerAccount{Code: "3200", Name: "Retained Surplus", Category: domain.CategoryEquity},
	)
	f.interest(t, "m1", "200", date(2024, time.June, 1))

	draft, err := f.uc.CalculateDividends(t.Context(), 2024, d("5"), d("10"), admin)
	require.NoError(t, err)
	assert.Empty(t, f.journal.Entries(), "calculation must not journal")

	total := draft.Distribution.TotalPayout
	_, err = newJournalUseCase(f.store).PostEntries(t.Context(), usecase.PostEntriesInput{
		ReferenceID: draft.Distribution.ID,
		Description: "dividend accrual 2024",
		Lines: []usecase.JournalLine{
			{AccountCode: "3200", Debit: total, Credit: decimal.Zero},
			{AccountCode: "2300", Debit: decimal.Zero, Credit: total},
		},
	}, admin)
	require.NoError(t, err)

	_, err = f.uc.DistributeDividends(t.Context(), 2024, admin)
	require.NoError(t, err)

	payable := decimal.Zero
	for _, e := range f.journal.Entries() {
		if e.AccountCode == "2300" {
			payable = payable.Add(e.Credit).Sub(e.Debit)
		}
	}
	assert.True(t, payable.IsZero(), "dividend payable left at %s", payable)
}
