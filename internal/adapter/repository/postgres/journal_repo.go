package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// Create appends a journal line.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	return queriesFor(r.queries, tx).CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
		ID:              entry.ID,
		PeriodKey:       entry.PeriodKey,
		AccountCode:     entry.AccountCode,
		Debit:           decimalToNumeric(entry.Debit),
		Credit:          decimalToNumeric(entry.Credit),
		TransactionDate: timeToPgTimestamptz(entry.TransactionDate),
		ReferenceType:   string(entry.ReferenceType),
		ReferenceID:     entry.ReferenceID,
		Description:     entry.Description,
		CreatedBy:       entry.CreatedBy,
		CreatedAt:       timeToPgTimestamptz(entry.CreatedAt),
	})
}

// SumByPeriod totals all debits and credits posted to a period.
func (r *JournalRepository) SumByPeriod(ctx context.Context, tx usecase.Transaction, periodKey string) (decimal.Decimal, decimal.Decimal, error) {
	row, err := queriesFor(r.queries, tx).SumJournalByPeriod(ctx, periodKey)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(row.Debits), numericToDecimal(row.Credits), nil
}

// SumByAccountForPeriod totals each account's lines within a period.
func (r *JournalRepository) SumByAccountForPeriod(ctx context.Context, periodKey string) ([]domain.AccountTotals, error) {
	rows, err := r.queries.SumJournalByAccountForPeriod(ctx, periodKey)
	if err != nil {
		return nil, err
	}

	return rowsToAccountTotals(rows), nil
}

// SumByAccountBetween totals each account's lines dated in [start, end).
func (r *JournalRepository) SumByAccountBetween(ctx context.Context, start, end time.Time) ([]domain.AccountTotals, error) {
	rows, err := r.queries.SumJournalByAccountBetween(ctx, generated.SumJournalByAccountBetweenParams{
		Start: timeToPgTimestamptz(start),
		End:   timeToPgTimestamptz(end),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccountTotals(rows), nil
}

// SumByAccountUntil totals each account's lines dated strictly before asOf.
func (r *JournalRepository) SumByAccountUntil(ctx context.Context, asOf time.Time) ([]domain.AccountTotals, error) {
	rows, err := r.queries.SumJournalByAccountBefore(ctx, timeToPgTimestamptz(asOf))
	if err != nil {
		return nil, err
	}

	return rowsToAccountTotals(rows), nil
}

func rowsToAccountTotals(rows []generated.AccountTotalsRow) []domain.AccountTotals {
	totals := make([]domain.AccountTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.AccountTotals{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			Debits:      numericToDecimal(row.Debits),
			Credits:     numericToDecimal(row.Credits),
		})
	}

	return totals
}
