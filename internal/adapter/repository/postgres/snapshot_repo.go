package postgres

import (
	"context"
	"time"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// LoanSnapshotRepository implements usecase.LoanSnapshotRepository.
type LoanSnapshotRepository struct {
	queries *generated.Queries
}

// NewLoanSnapshotRepository creates a new LoanSnapshotRepository.
func NewLoanSnapshotRepository(db generated.DBTX) *LoanSnapshotRepository {
	return &LoanSnapshotRepository{queries: generated.New(db)}
}

func (r *LoanSnapshotRepository) Exists(ctx context.Context, tx usecase.Transaction, loanID string, balanceDate time.Time) (bool, error) {
	return queriesFor(r.queries, tx).LoanSnapshotExists(ctx, generated.SnapshotKeyParams{
		OwnerID:     loanID,
		BalanceDate: dateToPg(balanceDate),
	})
}

// Create inserts a snapshot. A (loan, date) collision is ErrSnapshotExists.
func (r *LoanSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.LoanBalanceSnapshot) error {
	err := queriesFor(r.queries, tx).CreateLoanSnapshot(ctx, generated.LoanBalanceSnapshot{
		ID:                 s.ID,
		LoanID:             s.LoanID,
		BalanceDate:        dateToPg(s.BalanceDate),
		OpeningPrincipal:   decimalToNumeric(s.OpeningPrincipal),
		ClosingPrincipal:   decimalToNumeric(s.ClosingPrincipal),
		PrincipalPaid:      decimalToNumeric(s.PrincipalPaid),
		InterestPaid:       decimalToNumeric(s.InterestPaid),
		PenaltyPaid:        decimalToNumeric(s.PenaltyPaid),
		InterestAccrued:    decimalToNumeric(s.InterestAccrued),
		OutstandingBalance: decimalToNumeric(s.OutstandingBalance),
		Verified:           s.Verified,
		CreatedAt:          timeToPgTimestamptz(s.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrSnapshotExists
	}

	return err
}

// ListByDate returns every loan snapshot taken for balanceDate.
func (r *LoanSnapshotRepository) ListByDate(ctx context.Context, balanceDate time.Time) ([]*domain.LoanBalanceSnapshot, error) {
	rows, err := r.queries.ListLoanSnapshotsByDate(ctx, dateToPg(balanceDate))
	if err != nil {
		return nil, err
	}

	snapshots := make([]*domain.LoanBalanceSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, &domain.LoanBalanceSnapshot{
			ID:                 row.ID,
			LoanID:             row.LoanID,
			BalanceDate:        row.BalanceDate.Time,
			OpeningPrincipal:   numericToDecimal(row.OpeningPrincipal),
			ClosingPrincipal:   numericToDecimal(row.ClosingPrincipal),
			PrincipalPaid:      numericToDecimal(row.PrincipalPaid),
			InterestPaid:       numericToDecimal(row.InterestPaid),
			PenaltyPaid:        numericToDecimal(row.PenaltyPaid),
			InterestAccrued:    numericToDecimal(row.InterestAccrued),
			OutstandingBalance: numericToDecimal(row.OutstandingBalance),
			Verified:           row.Verified,
			CreatedAt:          row.CreatedAt.Time,
		})
	}

	return snapshots, nil
}

// MarkVerified flags every unverified snapshot for balanceDate and returns
// how many changed.
func (r *LoanSnapshotRepository) MarkVerified(ctx context.Context, tx usecase.Transaction, balanceDate time.Time) (int64, error) {
	return queriesFor(r.queries, tx).MarkLoanSnapshotsVerified(ctx, dateToPg(balanceDate))
}

// SavingSnapshotRepository implements usecase.SavingSnapshotRepository.
type SavingSnapshotRepository struct {
	queries *generated.Queries
}

// NewSavingSnapshotRepository creates a new SavingSnapshotRepository.
func NewSavingSnapshotRepository(db generated.DBTX) *SavingSnapshotRepository {
	return &SavingSnapshotRepository{queries: generated.New(db)}
}

func (r *SavingSnapshotRepository) Exists(ctx context.Context, tx usecase.Transaction, accountID string, balanceDate time.Time) (bool, error) {
	return queriesFor(r.queries, tx).SavingSnapshotExists(ctx, generated.SnapshotKeyParams{
		OwnerID:     accountID,
		BalanceDate: dateToPg(balanceDate),
	})
}

// Create inserts a snapshot. An (account, date) collision is ErrSnapshotExists.
func (r *SavingSnapshotRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.SavingBalanceSnapshot) error {
	err := queriesFor(r.queries, tx).CreateSavingSnapshot(ctx, generated.SavingBalanceSnapshot{
		ID:              s.ID,
		SavingAccountID: s.SavingAccountID,
		BalanceDate:     dateToPg(s.BalanceDate),
		OpeningBalance:  decimalToNumeric(s.OpeningBalance),
		ClosingBalance:  decimalToNumeric(s.ClosingBalance),
		Deposits:        decimalToNumeric(s.Deposits),
		Withdrawals:     decimalToNumeric(s.Withdrawals),
		InterestEarned:  decimalToNumeric(s.InterestEarned),
		Fees:            decimalToNumeric(s.Fees),
		CreatedAt:       timeToPgTimestamptz(s.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrSnapshotExists
	}

	return err
}
