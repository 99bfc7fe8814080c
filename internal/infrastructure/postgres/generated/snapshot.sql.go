package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const loanSnapshotExists = `-- name: LoanSnapshotExists :one
SELECT EXISTS (SELECT 1 FROM loan_balance_snapshots WHERE loan_id = $1 AND balance_date = $2)
`

type SnapshotKeyParams struct {
	OwnerID     string      `json:"owner_id"`
	BalanceDate pgtype.Date `json:"balance_date"`
}

func (q *Queries) LoanSnapshotExists(ctx context.Context, arg SnapshotKeyParams) (bool, error) {
	row := q.db.QueryRow(ctx, loanSnapshotExists, arg.OwnerID, arg.BalanceDate)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createLoanSnapshot = `-- name: CreateLoanSnapshot :exec
INSERT INTO loan_balance_snapshots (id, loan_id, balance_date, opening_principal, closing_principal, principal_paid, interest_paid, penalty_paid, interest_accrued, outstanding_balance, verified, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

func (q *Queries) CreateLoanSnapshot(ctx context.Context, arg LoanBalanceSnapshot) error {
	_, err := q.db.Exec(ctx, createLoanSnapshot,
		arg.ID,
		arg.LoanID,
		arg.BalanceDate,
		arg.OpeningPrincipal,
		arg.ClosingPrincipal,
		arg.PrincipalPaid,
		arg.InterestPaid,
		arg.PenaltyPaid,
		arg.InterestAccrued,
		arg.OutstandingBalance,
		arg.Verified,
		arg.CreatedAt,
	)
	return err
}

const listLoanSnapshotsByDate = `-- name: ListLoanSnapshotsByDate :many
SELECT id, loan_id, balance_date, opening_principal, closing_principal, principal_paid, interest_paid, penalty_paid, interest_accrued, outstanding_balance, verified, created_at
FROM loan_balance_snapshots
WHERE balance_date = $1
ORDER BY loan_id
`

func (q *Queries) ListLoanSnapshotsByDate(ctx context.Context, balanceDate pgtype.Date) ([]LoanBalanceSnapshot, error) {
	rows, err := q.db.Query(ctx, listLoanSnapshotsByDate, balanceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LoanBalanceSnapshot
	for rows.Next() {
		var i LoanBalanceSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.LoanID,
			&i.BalanceDate,
			&i.OpeningPrincipal,
			&i.ClosingPrincipal,
			&i.PrincipalPaid,
			&i.InterestPaid,
			&i.PenaltyPaid,
			&i.InterestAccrued,
			&i.OutstandingBalance,
			&i.Verified,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markLoanSnapshotsVerified = `-- name: MarkLoanSnapshotsVerified :execrows
UPDATE loan_balance_snapshots SET verified = true
WHERE balance_date = $1 AND verified = false
`

func (q *Queries) MarkLoanSnapshotsVerified(ctx context.Context, balanceDate pgtype.Date) (int64, error) {
	result, err := q.db.Exec(ctx, markLoanSnapshotsVerified, balanceDate)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const savingSnapshotExists = `-- name: SavingSnapshotExists :one
SELECT EXISTS (SELECT 1 FROM saving_balance_snapshots WHERE saving_account_id = $1 AND balance_date = $2)
`

func (q *Queries) SavingSnapshotExists(ctx context.Context, arg SnapshotKeyParams) (bool, error) {
	row := q.db.QueryRow(ctx, savingSnapshotExists, arg.OwnerID, arg.BalanceDate)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createSavingSnapshot = `-- name: CreateSavingSnapshot :exec
INSERT INTO saving_balance_snapshots (id, saving_account_id, balance_date, opening_balance, closing_balance, deposits, withdrawals, interest_earned, fees, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (q *Queries) CreateSavingSnapshot(ctx context.Context, arg SavingBalanceSnapshot) error {
	_, err := q.db.Exec(ctx, createSavingSnapshot,
		arg.ID,
		arg.SavingAccountID,
		arg.BalanceDate,
		arg.OpeningBalance,
		arg.ClosingBalance,
		arg.Deposits,
		arg.Withdrawals,
		arg.InterestEarned,
		arg.Fees,
		arg.CreatedAt,
	)
	return err
}
