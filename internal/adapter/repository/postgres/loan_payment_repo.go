package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// LoanPaymentRepository implements usecase.LoanPaymentRepository.
type LoanPaymentRepository struct {
	queries *generated.Queries
}

// NewLoanPaymentRepository creates a new LoanPaymentRepository.
func NewLoanPaymentRepository(db generated.DBTX) *LoanPaymentRepository {
	return &LoanPaymentRepository{queries: generated.New(db)}
}

// Create records a payment.
func (r *LoanPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.LoanPayment) error {
	return queriesFor(r.queries, tx).CreateLoanPayment(ctx, generated.CreateLoanPaymentParams{
		ID:            p.ID,
		LoanID:        p.LoanID,
		MemberID:      p.MemberID,
		PaymentType:   string(p.PaymentType),
		Status:        string(p.Status),
		Amount:        decimalToNumeric(p.Amount),
		PrincipalPaid: decimalToNumeric(p.PrincipalPaid),
		InterestPaid:  decimalToNumeric(p.InterestPaid),
		PenaltyPaid:   decimalToNumeric(p.PenaltyPaid),
		PaymentDate:   timeToPgTimestamptz(p.PaymentDate),
		ApprovedBy:    p.ApprovedBy,
		CreatedAt:     timeToPgTimestamptz(p.CreatedAt),
	})
}

// ListCompletedBetween returns completed payments of the given types dated
// in [start, end).
func (r *LoanPaymentRepository) ListCompletedBetween(ctx context.Context, tx usecase.Transaction, loanID string, start, end time.Time, types []domain.PaymentType) ([]*domain.LoanPayment, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	rows, err := queriesFor(r.queries, tx).ListCompletedPaymentsBetween(ctx, generated.ListCompletedPaymentsBetweenParams{
		LoanID: loanID,
		Types:  names,
		Start:  timeToPgTimestamptz(start),
		End:    timeToPgTimestamptz(end),
	})
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.LoanPayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, &domain.LoanPayment{
			ID:            row.ID,
			LoanID:        row.LoanID,
			MemberID:      row.MemberID,
			PaymentType:   domain.PaymentType(row.PaymentType),
			Status:        domain.PaymentStatus(row.Status),
			Amount:        numericToDecimal(row.Amount),
			PrincipalPaid: numericToDecimal(row.PrincipalPaid),
			InterestPaid:  numericToDecimal(row.InterestPaid),
			PenaltyPaid:   numericToDecimal(row.PenaltyPaid),
			PaymentDate:   row.PaymentDate.Time,
			ApprovedBy:    row.ApprovedBy,
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return payments, nil
}

// SumInterestPaidByMember totals completed interest a member paid in a
// calendar year.
func (r *LoanPaymentRepository) SumInterestPaidByMember(ctx context.Context, tx usecase.Transaction, memberID string, year int) (decimal.Decimal, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	total, err := queriesFor(r.queries, tx).SumInterestPaidByMember(ctx, generated.SumInterestPaidByMemberParams{
		MemberID: memberID,
		Start:    timeToPgTimestamptz(start),
		End:      timeToPgTimestamptz(start.AddDate(1, 0, 0)),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
