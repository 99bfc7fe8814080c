package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const dividendColumns = `id, year, dividend_rate, average_return_rate, status, total_share_capital, total_interest_paid, total_dividend, total_average_return, total_payout, recipient_count, calculated_by, calculated_at, distributed_by, distributed_at`

const getDividendByYear = `-- name: GetDividendByYear :one
SELECT ` + dividendColumns + `
FROM dividend_distributions WHERE year = $1
`

func (q *Queries) GetDividendByYear(ctx context.Context, year int32) (DividendDistribution, error) {
	row := q.db.QueryRow(ctx, getDividendByYear, year)
	return scanDividend(row)
}

const getDividendByYearForUpdate = `-- name: GetDividendByYearForUpdate :one
SELECT ` + dividendColumns + `
FROM dividend_distributions WHERE year = $1
FOR UPDATE
`

func (q *Queries) GetDividendByYearForUpdate(ctx context.Context, year int32) (DividendDistribution, error) {
	row := q.db.QueryRow(ctx, getDividendByYearForUpdate, year)
	return scanDividend(row)
}

const createDividend = `-- name: CreateDividend :exec
INSERT INTO dividend_distributions (` + dividendColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func (q *Queries) CreateDividend(ctx context.Context, arg DividendDistribution) error {
	_, err := q.db.Exec(ctx, createDividend,
		arg.ID,
		arg.Year,
		arg.DividendRate,
		arg.AverageReturnRate,
		arg.Status,
		arg.TotalShareCapital,
		arg.TotalInterestPaid,
		arg.TotalDividend,
		arg.TotalAverageReturn,
		arg.TotalPayout,
		arg.RecipientCount,
		arg.CalculatedBy,
		arg.CalculatedAt,
		arg.DistributedBy,
		arg.DistributedAt,
	)
	return err
}

const updateDividend = `-- name: UpdateDividend :execrows
UPDATE dividend_distributions
SET status = $2, total_share_capital = $3, total_interest_paid = $4, total_dividend = $5,
    total_average_return = $6, total_payout = $7, recipient_count = $8,
    distributed_by = $9, distributed_at = $10
WHERE id = $1
`

func (q *Queries) UpdateDividend(ctx context.Context, arg DividendDistribution) (int64, error) {
	result, err := q.db.Exec(ctx, updateDividend,
		arg.ID,
		arg.Status,
		arg.TotalShareCapital,
		arg.TotalInterestPaid,
		arg.TotalDividend,
		arg.TotalAverageReturn,
		arg.TotalPayout,
		arg.RecipientCount,
		arg.DistributedBy,
		arg.DistributedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createDividendRecipient = `-- name: CreateDividendRecipient :exec
INSERT INTO dividend_recipients (id, distribution_id, member_id, saving_account_id, share_capital, interest_paid, dividend_amount, average_return_amount, total_payout, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (q *Queries) CreateDividendRecipient(ctx context.Context, arg DividendRecipient) error {
	_, err := q.db.Exec(ctx, createDividendRecipient,
		arg.ID,
		arg.DistributionID,
		arg.MemberID,
		arg.SavingAccountID,
		arg.ShareCapital,
		arg.InterestPaid,
		arg.DividendAmount,
		arg.AverageReturnAmount,
		arg.TotalPayout,
		arg.PaidAt,
		arg.CreatedAt,
	)
	return err
}

const listDividendRecipients = `-- name: ListDividendRecipients :many
SELECT id, distribution_id, member_id, saving_account_id, share_capital, interest_paid, dividend_amount, average_return_amount, total_payout, paid_at, created_at
FROM dividend_recipients
WHERE distribution_id = $1
ORDER BY member_id
`

func (q *Queries) ListDividendRecipients(ctx context.Context, distributionID string) ([]DividendRecipient, error) {
	rows, err := q.db.Query(ctx, listDividendRecipients, distributionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DividendRecipient
	for rows.Next() {
		var i DividendRecipient
		if err := rows.Scan(
			&i.ID,
			&i.DistributionID,
			&i.MemberID,
			&i.SavingAccountID,
			&i.ShareCapital,
			&i.InterestPaid,
			&i.DividendAmount,
			&i.AverageReturnAmount,
			&i.TotalPayout,
			&i.PaidAt,
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

const markDividendRecipientPaid = `-- name: MarkDividendRecipientPaid :execrows
UPDATE dividend_recipients SET paid_at = $2 WHERE id = $1 AND paid_at IS NULL
`

type MarkDividendRecipientPaidParams struct {
	ID     string             `json:"id"`
	PaidAt pgtype.Timestamptz `json:"paid_at"`
}

func (q *Queries) MarkDividendRecipientPaid(ctx context.Context, arg MarkDividendRecipientPaidParams) (int64, error) {
	result, err := q.db.Exec(ctx, markDividendRecipientPaid, arg.ID, arg.PaidAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanDividend(row rowScanner) (DividendDistribution, error) {
	var i DividendDistribution
	err := row.Scan(
		&i.ID,
		&i.Year,
		&i.DividendRate,
		&i.AverageReturnRate,
		&i.Status,
		&i.TotalShareCapital,
		&i.TotalInterestPaid,
		&i.TotalDividend,
		&i.TotalAverageReturn,
		&i.TotalPayout,
		&i.RecipientCount,
		&i.CalculatedBy,
		&i.CalculatedAt,
		&i.DistributedBy,
		&i.DistributedAt,
	)
	return i, err
}
