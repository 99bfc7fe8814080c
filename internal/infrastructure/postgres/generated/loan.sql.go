package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getLoan = `-- name: GetLoan :one
SELECT id, member_id, loan_number, principal_amount, interest_rate, term_months, outstanding_balance, total_paid_principal, total_paid_interest, penalty_balance, status, disbursed_at, maturity_date, last_payment_at, version, created_at, updated_at
FROM loans WHERE id = $1
`

func (q *Queries) GetLoan(ctx context.Context, id string) (Loan, error) {
	row := q.db.QueryRow(ctx, getLoan, id)
	return scanLoan(row)
}

const getLoanForUpdate = `-- name: GetLoanForUpdate :one
SELECT id, member_id, loan_number, principal_amount, interest_rate, term_months, outstanding_balance, total_paid_principal, total_paid_interest, penalty_balance, status, disbursed_at, maturity_date, last_payment_at, version, created_at, updated_at
FROM loans WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetLoanForUpdate(ctx context.Context, id string) (Loan, error) {
	row := q.db.QueryRow(ctx, getLoanForUpdate, id)
	return scanLoan(row)
}

const listLoansByStatuses = `-- name: ListLoansByStatuses :many
SELECT id, member_id, loan_number, principal_amount, interest_rate, term_months, outstanding_balance, total_paid_principal, total_paid_interest, penalty_balance, status, disbursed_at, maturity_date, last_payment_at, version, created_at, updated_at
FROM loans WHERE status = ANY($1::text[])
ORDER BY id
`

func (q *Queries) ListLoansByStatuses(ctx context.Context, statuses []string) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listLoansByStatuses, statuses)
	if err != nil {
		return nil, err
	}
	return scanLoans(rows)
}

const listOverdueLoans = `-- name: ListOverdueLoans :many
SELECT id, member_id, loan_number, principal_amount, interest_rate, term_months, outstanding_balance, total_paid_principal, total_paid_interest, penalty_balance, status, disbursed_at, maturity_date, last_payment_at, version, created_at, updated_at
FROM loans
WHERE status = 'ACTIVE' AND maturity_date < $1 AND outstanding_balance > 0
ORDER BY id
FOR UPDATE
`

func (q *Queries) ListOverdueLoans(ctx context.Context, now pgtype.Timestamptz) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listOverdueLoans, now)
	if err != nil {
		return nil, err
	}
	return scanLoans(rows)
}

const updateLoanBalances = `-- name: UpdateLoanBalances :execrows
UPDATE loans
SET outstanding_balance = $2, total_paid_principal = $3, total_paid_interest = $4, penalty_balance = $5,
    status = $6, last_payment_at = $7, version = version + 1, updated_at = $8
WHERE id = $1
`

type UpdateLoanBalancesParams struct {
	ID                 string             `json:"id"`
	OutstandingBalance pgtype.Numeric     `json:"outstanding_balance"`
	TotalPaidPrincipal pgtype.Numeric     `json:"total_paid_principal"`
	TotalPaidInterest  pgtype.Numeric     `json:"total_paid_interest"`
	PenaltyBalance     pgtype.Numeric     `json:"penalty_balance"`
	Status             string             `json:"status"`
	LastPaymentAt      pgtype.Timestamptz `json:"last_payment_at"`
	UpdatedAt          pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLoanBalances(ctx context.Context, arg UpdateLoanBalancesParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLoanBalances,
		arg.ID,
		arg.OutstandingBalance,
		arg.TotalPaidPrincipal,
		arg.TotalPaidInterest,
		arg.PenaltyBalance,
		arg.Status,
		arg.LastPaymentAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateLoanStatus = `-- name: UpdateLoanStatus :execrows
UPDATE loans SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1
`

type UpdateLoanStatusParams struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLoanStatus(ctx context.Context, arg UpdateLoanStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLoanStatus, arg.ID, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanLoan(row rowScanner) (Loan, error) {
	var i Loan
	err := row.Scan(
		&i.ID,
		&i.MemberID,
		&i.LoanNumber,
		&i.PrincipalAmount,
		&i.InterestRate,
		&i.TermMonths,
		&i.OutstandingBalance,
		&i.TotalPaidPrincipal,
		&i.TotalPaidInterest,
		&i.PenaltyBalance,
		&i.Status,
		&i.DisbursedAt,
		&i.MaturityDate,
		&i.LastPaymentAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanLoans(rows rowIterator) ([]Loan, error) {
	defer rows.Close()
	var items []Loan
	for rows.Next() {
		i, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
