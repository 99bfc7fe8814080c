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

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{queries: generated.New(db)}
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoan(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan with a row lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	row, err := queriesFor(r.queries, tx).GetLoanForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}

		return nil, err
	}

	return rowToLoan(row), nil
}

// ListByStatuses returns loans in any of the given statuses ordered by ID.
func (r *LoanRepository) ListByStatuses(ctx context.Context, tx usecase.Transaction, statuses []domain.LoanStatus) ([]*domain.Loan, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := queriesFor(r.queries, tx).ListLoansByStatuses(ctx, names)
	if err != nil {
		return nil, err
	}

	return rowsToLoans(rows), nil
}

// UpdateBalances writes the balances, status and last payment time.
func (r *LoanRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	n, err := queriesFor(r.queries, tx).UpdateLoanBalances(ctx, generated.UpdateLoanBalancesParams{
		ID:                 loan.ID,
		OutstandingBalance: decimalToNumeric(loan.OutstandingBalance),
		TotalPaidPrincipal: decimalToNumeric(loan.TotalPaidPrincipal),
		TotalPaidInterest:  decimalToNumeric(loan.TotalPaidInterest),
		PenaltyBalance:     decimalToNumeric(loan.PenaltyBalance),
		Status:             string(loan.Status),
		LastPaymentAt:      optTimeToPg(loan.LastPaymentAt),
		UpdatedAt:          timeToPgTimestamptz(loan.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// UpdateStatus changes only the loan status.
func (r *LoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	n, err := queriesFor(r.queries, tx).UpdateLoanStatus(ctx, generated.UpdateLoanStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// ListOverdue locks active loans past maturity that still owe money.
func (r *LoanRepository) ListOverdue(ctx context.Context, tx usecase.Transaction, now time.Time) ([]*domain.Loan, error) {
	rows, err := queriesFor(r.queries, tx).ListOverdueLoans(ctx, timeToPgTimestamptz(now))
	if err != nil {
		return nil, err
	}

	return rowsToLoans(rows), nil
}

func rowsToLoans(rows []generated.Loan) []*domain.Loan {
	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:                 row.ID,
		MemberID:           row.MemberID,
		LoanNumber:         row.LoanNumber,
		PrincipalAmount:    numericToDecimal(row.PrincipalAmount),
		InterestRate:       numericToDecimal(row.InterestRate),
		TermMonths:         int(row.TermMonths),
		OutstandingBalance: numericToDecimal(row.OutstandingBalance),
		TotalPaidPrincipal: numericToDecimal(row.TotalPaidPrincipal),
		TotalPaidInterest:  numericToDecimal(row.TotalPaidInterest),
		PenaltyBalance:     numericToDecimal(row.PenaltyBalance),
		Status:             domain.LoanStatus(row.Status),
		DisbursedAt:        pgToOptTime(row.DisbursedAt),
		MaturityDate:       pgToOptTime(row.MaturityDate),
		LastPaymentAt:      pgToOptTime(row.LastPaymentAt),
		Version:            row.Version,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}
