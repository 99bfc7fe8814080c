package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coopledger/internal/domain"
)

func num(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func ts(t time.Time) pgtype.Timestamptz {
	return timeToPgTimestamptz(t)
}

func TestLedgerAccountRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		want    error
	}{
		{name: "inserted"},
		{name: "duplicate code", execErr: &pgconn.PgError{Code: pgErrUniqueViolation}, want: domain.ErrAccountExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			parent := "1000"
			exec := mock.ExpectExec("INSERT INTO ledger_accounts").
				WithArgs("1100", "Cash", "ASSET", pgtype.Text{String: "1000", Valid: true}, pgxmock.AnyArg())
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			repo := NewLedgerAccountRepository(mock)
			err := repo.Create(t.Context(), nil, &domain.LedgerAccount{
				Code:       "1100",
				Name:       "Cash",
				Category:   domain.CategoryAsset,
				ParentCode: &parent,
				CreatedAt:  time.Now(),
			})

			if tt.want == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assertExpectations(t, mock)
		})
	}
}

func TestLedgerAccountRepository_GetByCodeNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("SELECT code, name, category, parent_code, created_at FROM ledger_accounts").
		WithArgs("9999").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewLedgerAccountRepository(mock).GetByCode(t.Context(), nil, "9999")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assertExpectations(t, mock)
}

func TestLedgerAccountRepository_DeleteInsideTransaction(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectExec("DELETE FROM ledger_accounts").
		WithArgs("5100").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	tx, err := newTxManager(mock).Begin(t.Context())
	require.NoError(t, err)

	err = NewLedgerAccountRepository(mock).Delete(t.Context(), tx, "5100")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, tx.Rollback(t.Context()))
	assertExpectations(t, mock)
}

func TestJournalRepository_SumByPeriod(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("FROM journal_entries").
		WithArgs("2025-04").
		WillReturnRows(pgxmock.NewRows([]string{"debits", "credits"}).
			AddRow(num("140.00"), num("139.97")))

	debits, credits, err := NewJournalRepository(mock).SumByPeriod(t.Context(), nil, "2025-04")
	require.NoError(t, err)
	assert.Equal(t, "140.00", debits.StringFixed(2))
	assert.Equal(t, "139.97", credits.StringFixed(2))
	assertExpectations(t, mock)
}

func TestJournalRepository_SumByAccountBetween(t *testing.T) {
	mock := newMockPool(t)
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("je.transaction_date >= \\$1 AND je.transaction_date < \\$2").
		WithArgs(ts(start), ts(end)).
		WillReturnRows(pgxmock.NewRows([]string{"account_code", "account_name", "debits", "credits"}).
			AddRow("4100", "Interest income", num("0"), num("120")).
			AddRow("5100", "Office costs", num("20"), num("0")))

	totals, err := NewJournalRepository(mock).SumByAccountBetween(t.Context(), start, end)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "4100", totals[0].AccountCode)
	assert.Equal(t, "120", totals[0].Credits.String())
	assert.True(t, totals[1].Credits.IsZero())
	assertExpectations(t, mock)
}

func TestFiscalPeriodRepository_GetForUpdateCreatesMissingRow(t *testing.T) {
	mock := newMockPool(t)
	closedAt := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO fiscal_periods").
		WithArgs("P1", int32(4), int32(2025), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int32(4), int32(2025)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "month", "year", "status", "closed_at", "closed_by",
			"confirmed_at", "confirmed_by", "created_at", "updated_at",
		}).AddRow("P1", int32(4), int32(2025), "CLOSED", ts(closedAt), pgtype.Text{String: "alice", Valid: true},
			pgtype.Timestamptz{}, pgtype.Text{}, ts(closedAt), ts(closedAt)))

	repo := NewFiscalPeriodRepository(mock, fixedID("P1"))
	fp, err := repo.GetForUpdate(t.Context(), nil, domain.Period{Month: 4, Year: 2025})
	require.NoError(t, err)

	assert.True(t, fp.IsClosed())
	assert.False(t, fp.IsConfirmed())
	assert.Equal(t, "alice", fp.ClosedBy)
	require.NotNil(t, fp.ClosedAt)
	assert.Equal(t, closedAt, *fp.ClosedAt)
	assertExpectations(t, mock)
}

func TestLoanRepository_GetByID(t *testing.T) {
	mock := newMockPool(t)
	disbursed := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM loans WHERE id = \\$1").
		WithArgs("L1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "member_id", "loan_number", "principal_amount", "interest_rate", "term_months",
			"outstanding_balance", "total_paid_principal", "total_paid_interest", "penalty_balance",
			"status", "disbursed_at", "maturity_date", "last_payment_at", "version", "created_at", "updated_at",
		}).AddRow("L1", "M1", "LN-001", num("1200"), num("12"), int32(12),
			num("800.50"), num("399.50"), num("48"), num("0"),
			"ACTIVE", ts(disbursed), ts(disbursed.AddDate(1, 0, 0)), pgtype.Timestamptz{}, int64(3), ts(disbursed), ts(disbursed)))

	loan, err := NewLoanRepository(mock).GetByID(t.Context(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "800.50", loan.OutstandingBalance.StringFixed(2))
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
	assert.Equal(t, 12, loan.TermMonths)
	assert.Nil(t, loan.LastPaymentAt)
	require.NotNil(t, loan.MaturityDate)
	assert.Equal(t, 2025, loan.MaturityDate.Year())
	assertExpectations(t, mock)
}

func TestLoanRepository_GetByIDNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("FROM loans").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := NewLoanRepository(mock).GetByID(t.Context(), "nope")
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestLoanRepository_ListByStatuses(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("status = ANY").
		WithArgs([]string{"ACTIVE", "DEFAULTED"}).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "member_id", "loan_number", "principal_amount", "interest_rate", "term_months",
			"outstanding_balance", "total_paid_principal", "total_paid_interest", "penalty_balance",
			"status", "disbursed_at", "maturity_date", "last_payment_at", "version", "created_at", "updated_at",
		}))

	loans, err := NewLoanRepository(mock).ListByStatuses(t.Context(), nil,
		[]domain.LoanStatus{domain.LoanStatusActive, domain.LoanStatusDefaulted})
	require.NoError(t, err)
	assert.Empty(t, loans)
	assertExpectations(t, mock)
}

func TestLoanSnapshotRepository_CreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	balanceDate := time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC)

	mock.ExpectExec("INSERT INTO loan_balance_snapshots").
		WithArgs("S1", "L1", pgtype.Date{Time: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), Valid: true},
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), false, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := NewLoanSnapshotRepository(mock).Create(t.Context(), nil, &domain.LoanBalanceSnapshot{
		ID:          "S1",
		LoanID:      "L1",
		BalanceDate: balanceDate,
	})
	assert.ErrorIs(t, err, domain.ErrSnapshotExists)
	assertExpectations(t, mock)
}

func TestLoanSnapshotRepository_MarkVerified(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("UPDATE loan_balance_snapshots SET verified = true").
		WithArgs(pgtype.Date{Time: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), Valid: true}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 7))

	n, err := NewLoanSnapshotRepository(mock).MarkVerified(t.Context(), nil, time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSavingAccountRepository_UpdateBalanceVersionMismatch(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("UPDATE saving_accounts").
		WithArgs("SA1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(4), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewSavingAccountRepository(mock).UpdateBalance(t.Context(), nil, &domain.SavingAccount{
		ID:      "SA1",
		Balance: decimal.NewFromInt(10),
		Version: 4,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDividendRepository_CreateDuplicateYear(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("INSERT INTO dividend_distributions").
		WithArgs("D1", int32(2024), pgxmock.AnyArg(), pgxmock.AnyArg(), string(domain.DistributionStatusPending),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := NewDividendRepository(mock).Create(t.Context(), nil, &domain.DividendDistribution{
		ID:     "D1",
		Year:   2024,
		Status: domain.DistributionStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrDistributionExists)
	assertExpectations(t, mock)
}

func TestDividendRepository_MarkRecipientPaidTwice(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("UPDATE dividend_recipients").
		WithArgs("R1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewDividendRepository(mock).MarkRecipientPaid(t.Context(), nil, "R1", time.Now())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOutboxRepository_GetUnpublished(t *testing.T) {
	mock := newMockPool(t)
	created := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("WHERE published = false").
		WithArgs(int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
		}).AddRow("E1", "2025-04", domain.AggregateTypePeriod, domain.EventTypePeriodClosed,
			[]byte(`{"period_key":"2025-04"}`), ts(created), pgtype.Timestamptz{}, false))

	events, err := NewOutboxRepository(mock).GetUnpublished(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-04", events[0].Payload["period_key"])
	assert.Nil(t, events[0].PublishedAt)
}

func TestAuditRepository_ListNumbersPlaceholders(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("AND actor = \\$1 AND entity_type = \\$2 AND entity_id = \\$3 ORDER BY created_at DESC, id DESC LIMIT \\$4").
		WithArgs("alice", domain.EntityFiscalPeriod, "2025-04", 20).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "actor", "action", "entity_type", "entity_id", "before_state", "after_state", "status", "created_at",
		}).AddRow("A1", "alice", string(domain.AuditActionPeriodClose), domain.EntityFiscalPeriod, "2025-04",
			nil, []byte(`{"status":"CLOSED"}`), string(domain.AuditStatusSuccess), time.Now()))

	logs, err := NewAuditRepository(mock).List(t.Context(), domain.AuditFilter{
		Actor:      "alice",
		EntityType: domain.EntityFiscalPeriod,
		EntityID:   "2025-04",
		Limit:      20,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "CLOSED", logs[0].AfterState["status"])
	assert.Nil(t, logs[0].BeforeState)
}

func TestAuditRepository_RecordAssignsID(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(pgxmock.AnyArg(), "alice", string(domain.AuditActionPeriodClose), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	log := &domain.AuditLog{Actor: "alice", Action: string(domain.AuditActionPeriodClose)}
	require.NoError(t, NewAuditRepository(mock).Record(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assertExpectations(t, mock)
}

func TestRepositoryPropagatesDriverErrors(t *testing.T) {
	mock := newMockPool(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM members").WillReturnError(boom)

	_, err := NewMemberRepository(mock).ListActive(t.Context(), nil)
	assert.ErrorIs(t, err, boom)
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func TestOutboxRepository_CreateRejectsUnknownAggregate(t *testing.T) {
	mock := newMockPool(t)

	err := NewOutboxRepository(mock).Create(t.Context(), nil, &domain.OutboxEvent{
		ID:            "E1",
		AggregateID:   "acc-1",
		AggregateType: "account",
		EventType:     "account.created",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_GetByAggregate(t *testing.T) {
	mock := newMockPool(t)
	created := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	published := created.Add(time.Minute)

	mock.ExpectQuery("WHERE aggregate_type = \\$1 AND aggregate_id = \\$2").
		WithArgs(domain.AggregateTypeDividend, "2024", int32(maxEventPage), int32(0)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
		}).AddRow("E2", "2024", domain.AggregateTypeDividend, domain.EventTypeDividendDistributed,
			[]byte(`{"year":2024,"recipient_count":3}`), ts(created), ts(published), true))

	events, err := NewOutboxRepository(mock).GetByAggregate(t.Context(), domain.AggregateTypeDividend, "2024", 0, -1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, json.Number("3"), events[0].Payload["recipient_count"])
	require.NotNil(t, events[0].PublishedAt)
	assert.True(t, events[0].PublishedAt.Equal(published))

	_, err = NewOutboxRepository(mock).GetByAggregate(t.Context(), "account", "a1", 10, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOutboxRepository_CorruptPayload(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("WHERE published = false").
		WithArgs(int32(5)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
		}).AddRow("E3", "L1", domain.AggregateTypeLoan, domain.EventTypeLoanDefaulted,
			[]byte(`{not json`), ts(time.Now()), pgtype.Timestamptz{}, false))

	_, err := NewOutboxRepository(mock).GetUnpublished(t.Context(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E3")
}

func TestAuditRepository_ListCapsPageAndRejectsCorruptState(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("ORDER BY created_at DESC, id DESC LIMIT \\$1 OFFSET \\$2").
		WithArgs(maxAuditPage, 40).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "actor", "action", "entity_type", "entity_id", "before_state", "after_state", "status", "created_at",
		}).AddRow("A2", "bob", string(domain.AuditActionPeriodConfirm), domain.EntityFiscalPeriod, "2025-04",
			[]byte(`{"status":`), nil, string(domain.AuditStatusSuccess), time.Now()))

	_, err := NewAuditRepository(mock).List(t.Context(), domain.AuditFilter{Limit: 10_000, Offset: 40})
	assert.ErrorContains(t, err, "audit log A2 before state")
}
