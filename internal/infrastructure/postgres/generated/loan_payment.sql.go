package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLoanPayment = `-- name: CreateLoanPayment :exec
INSERT INTO loan_payments (id, loan_id, member_id, payment_type, status, amount, principal_paid, interest_paid, penalty_paid, payment_date, approved_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateLoanPaymentParams struct {
	ID            string             `json:"id"`
	LoanID        string             `json:"loan_id"`
	MemberID      string             `json:"member_id"`
	PaymentType   string             `json:"payment_type"`
	Status        string             `json:"status"`
	Amount        pgtype.Numeric     `json:"amount"`
	PrincipalPaid pgtype.Numeric     `json:"principal_paid"`
	InterestPaid  pgtype.Numeric     `json:"interest_paid"`
	PenaltyPaid   pgtype.Numeric     `json:"penalty_paid"`
	PaymentDate   pgtype.Timestamptz `json:"payment_date"`
	ApprovedBy    string             `json:"approved_by"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLoanPayment(ctx context.Context, arg CreateLoanPaymentParams) error {
	_, err := q.db.Exec(ctx, createLoanPayment,
		arg.ID,
		arg.LoanID,
		arg.MemberID,
		arg.PaymentType,
		arg.Status,
		arg.Amount,
		arg.PrincipalPaid,
		arg.InterestPaid,
		arg.PenaltyPaid,
		arg.PaymentDate,
		arg.ApprovedBy,
		arg.CreatedAt,
	)
	return err
}

const listCompletedPaymentsBetween = `-- name: ListCompletedPaymentsBetween :many
SELECT id, loan_id, member_id, payment_type, status, amount, principal_paid, interest_paid, penalty_paid, payment_date, approved_by, created_at
FROM loan_payments
WHERE loan_id = $1
  AND status = 'COMPLETED'
  AND payment_type = ANY($2::text[])
  AND payment_date >= $3 AND payment_date < $4
ORDER BY payment_date, id
`

type ListCompletedPaymentsBetweenParams struct {
	LoanID string             `json:"loan_id"`
	Types  []string           `json:"types"`
	Start  pgtype.Timestamptz `json:"start"`
	End    pgtype.Timestamptz `json:"end"`
}

func (q *Queries) ListCompletedPaymentsBetween(ctx context.Context, arg ListCompletedPaymentsBetweenParams) ([]LoanPayment, error) {
	rows, err := q.db.Query(ctx, listCompletedPaymentsBetween,
		arg.LoanID,
		arg.Types,
		arg.Start,
		arg.End,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LoanPayment
	for rows.Next() {
		var i LoanPayment
		if err := rows.Scan(
			&i.ID,
			&i.LoanID,
			&i.MemberID,
			&i.PaymentType,
			&i.Status,
			&i.Amount,
			&i.PrincipalPaid,
			&i.InterestPaid,
			&i.PenaltyPaid,
			&i.PaymentDate,
			&i.ApprovedBy,
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

const sumInterestPaidByMember = `-- name: SumInterestPaidByMember :one
SELECT COALESCE(SUM(interest_paid), 0)::numeric
FROM loan_payments
WHERE member_id = $1
  AND status = 'COMPLETED'
  AND payment_date >= $2 AND payment_date < $3
`

type SumInterestPaidByMemberParams struct {
	MemberID string             `json:"member_id"`
	Start    pgtype.Timestamptz `json:"start"`
	End      pgtype.Timestamptz `json:"end"`
}

func (q *Queries) SumInterestPaidByMember(ctx context.Context, arg SumInterestPaidByMemberParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumInterestPaidByMember, arg.MemberID, arg.Start, arg.End)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
