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

// DividendRepository implements usecase.DividendRepository.
type DividendRepository struct {
	queries *generated.Queries
}

// NewDividendRepository creates a new DividendRepository.
func NewDividendRepository(db generated.DBTX) *DividendRepository {
	return &DividendRepository{queries: generated.New(db)}
}

// GetByYear retrieves the distribution for a year.
func (r *DividendRepository) GetByYear(ctx context.Context, year int) (*domain.DividendDistribution, error) {
	row, err := r.queries.GetDividendByYear(ctx, int32(year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDistributionNotFound
		}

		return nil, err
	}

	return rowToDistribution(row), nil
}

// GetByYearForUpdate retrieves the distribution with a row lock.
func (r *DividendRepository) GetByYearForUpdate(ctx context.Context, tx usecase.Transaction, year int) (*domain.DividendDistribution, error) {
	row, err := queriesFor(r.queries, tx).GetDividendByYearForUpdate(ctx, int32(year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDistributionNotFound
		}

		return nil, err
	}

	return rowToDistribution(row), nil
}

// Create inserts a distribution. The year is unique.
func (r *DividendRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.DividendDistribution) error {
	err := queriesFor(r.queries, tx).CreateDividend(ctx, distributionToRow(d))
	if isUniqueViolation(err) {
		return domain.ErrDistributionExists
	}

	return err
}

// Update writes totals, status and the distribution stamp.
func (r *DividendRepository) Update(ctx context.Context, tx usecase.Transaction, d *domain.DividendDistribution) error {
	n, err := queriesFor(r.queries, tx).UpdateDividend(ctx, distributionToRow(d))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDistributionNotFound
	}

	return nil
}

// CreateRecipient inserts one member's share.
func (r *DividendRepository) CreateRecipient(ctx context.Context, tx usecase.Transaction, rc *domain.DividendRecipient) error {
	return queriesFor(r.queries, tx).CreateDividendRecipient(ctx, generated.DividendRecipient{
		ID:                  rc.ID,
		DistributionID:      rc.DistributionID,
		MemberID:            rc.MemberID,
		SavingAccountID:     textToPg(rc.SavingAccountID),
		ShareCapital:        decimalToNumeric(rc.ShareCapital),
		InterestPaid:        decimalToNumeric(rc.InterestPaid),
		DividendAmount:      decimalToNumeric(rc.DividendAmount),
		AverageReturnAmount: decimalToNumeric(rc.AverageReturnAmount),
		TotalPayout:         decimalToNumeric(rc.TotalPayout),
		PaidAt:              optTimeToPg(rc.PaidAt),
		CreatedAt:           timeToPgTimestamptz(rc.CreatedAt),
	})
}

// ListRecipients returns a distribution's recipients ordered by member.
func (r *DividendRepository) ListRecipients(ctx context.Context, tx usecase.Transaction, distributionID string) ([]*domain.DividendRecipient, error) {
	rows, err := queriesFor(r.queries, tx).ListDividendRecipients(ctx, distributionID)
	if err != nil {
		return nil, err
	}

	recipients := make([]*domain.DividendRecipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, &domain.DividendRecipient{
			ID:                  row.ID,
			DistributionID:      row.DistributionID,
			MemberID:            row.MemberID,
			SavingAccountID:     row.SavingAccountID.String,
			ShareCapital:        numericToDecimal(row.ShareCapital),
			InterestPaid:        numericToDecimal(row.InterestPaid),
			DividendAmount:      numericToDecimal(row.DividendAmount),
			AverageReturnAmount: numericToDecimal(row.AverageReturnAmount),
			TotalPayout:         numericToDecimal(row.TotalPayout),
			PaidAt:              pgToOptTime(row.PaidAt),
			CreatedAt:           row.CreatedAt.Time,
		})
	}

	return recipients, nil
}

// MarkRecipientPaid stamps a recipient once; a second call is a conflict.
func (r *DividendRepository) MarkRecipientPaid(ctx context.Context, tx usecase.Transaction, id string, paidAt time.Time) error {
	n, err := queriesFor(r.queries, tx).MarkDividendRecipientPaid(ctx, generated.MarkDividendRecipientPaidParams{
		ID:     id,
		PaidAt: timeToPgTimestamptz(paidAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDistributionAlreadyApproved
	}

	return nil
}

func distributionToRow(d *domain.DividendDistribution) generated.DividendDistribution {
	return generated.DividendDistribution{
		ID:                 d.ID,
		Year:               int32(d.Year),
		DividendRate:       decimalToNumeric(d.DividendRate),
		AverageReturnRate:  decimalToNumeric(d.AverageReturnRate),
		Status:             string(d.Status),
		TotalShareCapital:  decimalToNumeric(d.TotalShareCapital),
		TotalInterestPaid:  decimalToNumeric(d.TotalInterestPaid),
		TotalDividend:      decimalToNumeric(d.TotalDividend),
		TotalAverageReturn: decimalToNumeric(d.TotalAverageReturn),
		TotalPayout:        decimalToNumeric(d.TotalPayout),
		RecipientCount:     int32(d.RecipientCount),
		CalculatedBy:       d.CalculatedBy,
		CalculatedAt:       timeToPgTimestamptz(d.CalculatedAt),
		DistributedBy:      textToPg(d.DistributedBy),
		DistributedAt:      optTimeToPg(d.DistributedAt),
	}
}

func rowToDistribution(row generated.DividendDistribution) *domain.DividendDistribution {
	return &domain.DividendDistribution{
		ID:                 row.ID,
		Year:               int(row.Year),
		DividendRate:       numericToDecimal(row.DividendRate),
		AverageReturnRate:  numericToDecimal(row.AverageReturnRate),
		Status:             domain.DistributionStatus(row.Status),
		TotalShareCapital:  numericToDecimal(row.TotalShareCapital),
		TotalInterestPaid:  numericToDecimal(row.TotalInterestPaid),
		TotalDividend:      numericToDecimal(row.TotalDividend),
		TotalAverageReturn: numericToDecimal(row.TotalAverageReturn),
		TotalPayout:        numericToDecimal(row.TotalPayout),
		RecipientCount:     int(row.RecipientCount),
		CalculatedBy:       row.CalculatedBy,
		CalculatedAt:       row.CalculatedAt.Time,
		DistributedBy:      row.DistributedBy.String,
		DistributedAt:      pgToOptTime(row.DistributedAt),
	}
}
