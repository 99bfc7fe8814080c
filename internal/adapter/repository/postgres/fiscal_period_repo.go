package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// FiscalPeriodRepository implements usecase.FiscalPeriodRepository.
type FiscalPeriodRepository struct {
	queries *generated.Queries
	idGen   usecase.IDGenerator
}

// NewFiscalPeriodRepository creates a new FiscalPeriodRepository. idGen
// names the rows GetForUpdate creates on first use.
func NewFiscalPeriodRepository(db generated.DBTX, idGen usecase.IDGenerator) *FiscalPeriodRepository {
	return &FiscalPeriodRepository{
		queries: generated.New(db),
		idGen:   idGen,
	}
}

// GetForUpdate locks the period row, inserting it as OPEN when missing.
// Concurrent first users race on the (month, year) constraint and the loser
// falls through to the lock.
func (r *FiscalPeriodRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error) {
	q := queriesFor(r.queries, tx)

	err := q.EnsureFiscalPeriod(ctx, generated.EnsureFiscalPeriodParams{
		ID:        r.idGen.Generate(),
		Month:     int32(period.Month),
		Year:      int32(period.Year),
		CreatedAt: timeToPgTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return nil, err
	}

	row, err := q.GetFiscalPeriodForUpdate(ctx, periodKeyParams(period))
	if err != nil {
		return nil, err
	}

	return rowToFiscalPeriod(row), nil
}

// Get returns the stored period without creating it.
func (r *FiscalPeriodRepository) Get(ctx context.Context, tx usecase.Transaction, period domain.Period) (*domain.FiscalPeriod, error) {
	row, err := queriesFor(r.queries, tx).GetFiscalPeriod(ctx, periodKeyParams(period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}

		return nil, err
	}

	return rowToFiscalPeriod(row), nil
}

// Update writes the status and closing/confirmation stamps.
func (r *FiscalPeriodRepository) Update(ctx context.Context, tx usecase.Transaction, fp *domain.FiscalPeriod) error {
	n, err := queriesFor(r.queries, tx).UpdateFiscalPeriod(ctx, generated.UpdateFiscalPeriodParams{
		ID:          fp.ID,
		Status:      string(fp.Status),
		ClosedAt:    optTimeToPg(fp.ClosedAt),
		ClosedBy:    textToPg(fp.ClosedBy),
		ConfirmedAt: optTimeToPg(fp.ConfirmedAt),
		ConfirmedBy: textToPg(fp.ConfirmedBy),
		UpdatedAt:   timeToPgTimestamptz(fp.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPeriodNotFound
	}

	return nil
}

// List returns periods newest first.
func (r *FiscalPeriodRepository) List(ctx context.Context, limit, offset int) ([]*domain.FiscalPeriod, error) {
	rows, err := r.queries.ListFiscalPeriods(ctx, generated.ListFiscalPeriodsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	periods := make([]*domain.FiscalPeriod, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, rowToFiscalPeriod(row))
	}

	return periods, nil
}

func periodKeyParams(p domain.Period) generated.FiscalPeriodKeyParams {
	return generated.FiscalPeriodKeyParams{Month: int32(p.Month), Year: int32(p.Year)}
}

func rowToFiscalPeriod(row generated.FiscalPeriod) *domain.FiscalPeriod {
	return &domain.FiscalPeriod{
		ID:          row.ID,
		Month:       int(row.Month),
		Year:        int(row.Year),
		Status:      domain.PeriodStatus(row.Status),
		ClosedAt:    pgToOptTime(row.ClosedAt),
		ClosedBy:    row.ClosedBy.String,
		ConfirmedAt: pgToOptTime(row.ConfirmedAt),
		ConfirmedBy: row.ConfirmedBy.String,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
