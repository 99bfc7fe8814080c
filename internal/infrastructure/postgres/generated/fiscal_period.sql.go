package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ensureFiscalPeriod = `-- name: EnsureFiscalPeriod :exec
INSERT INTO fiscal_periods (id, month, year, status, created_at, updated_at)
VALUES ($1, $2, $3, 'OPEN', $4, $4)
ON CONFLICT (month, year) DO NOTHING
`

type EnsureFiscalPeriodParams struct {
	ID        string             `json:"id"`
	Month     int32              `json:"month"`
	Year      int32              `json:"year"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) EnsureFiscalPeriod(ctx context.Context, arg EnsureFiscalPeriodParams) error {
	_, err := q.db.Exec(ctx, ensureFiscalPeriod,
		arg.ID,
		arg.Month,
		arg.Year,
		arg.CreatedAt,
	)
	return err
}

type FiscalPeriodKeyParams struct {
	Month int32 `json:"month"`
	Year  int32 `json:"year"`
}

const getFiscalPeriod = `-- name: GetFiscalPeriod :one
SELECT id, month, year, status, closed_at, closed_by, confirmed_at, confirmed_by, created_at, updated_at
FROM fiscal_periods
WHERE month = $1 AND year = $2
`

func (q *Queries) GetFiscalPeriod(ctx context.Context, arg FiscalPeriodKeyParams) (FiscalPeriod, error) {
	row := q.db.QueryRow(ctx, getFiscalPeriod, arg.Month, arg.Year)
	return scanFiscalPeriod(row)
}

const getFiscalPeriodForUpdate = `-- name: GetFiscalPeriodForUpdate :one
SELECT id, month, year, status, closed_at, closed_by, confirmed_at, confirmed_by, created_at, updated_at
FROM fiscal_periods
WHERE month = $1 AND year = $2
FOR UPDATE
`

func (q *Queries) GetFiscalPeriodForUpdate(ctx context.Context, arg FiscalPeriodKeyParams) (FiscalPeriod, error) {
	row := q.db.QueryRow(ctx, getFiscalPeriodForUpdate, arg.Month, arg.Year)
	return scanFiscalPeriod(row)
}

const listFiscalPeriods = `-- name: ListFiscalPeriods :many
SELECT id, month, year, status, closed_at, closed_by, confirmed_at, confirmed_by, created_at, updated_at
FROM fiscal_periods
ORDER BY year DESC, month DESC
LIMIT $1 OFFSET $2
`

type ListFiscalPeriodsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListFiscalPeriods(ctx context.Context, arg ListFiscalPeriodsParams) ([]FiscalPeriod, error) {
	rows, err := q.db.Query(ctx, listFiscalPeriods, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FiscalPeriod
	for rows.Next() {
		i, err := scanFiscalPeriod(rows)
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

const updateFiscalPeriod = `-- name: UpdateFiscalPeriod :execrows
UPDATE fiscal_periods
SET status = $2, closed_at = $3, closed_by = $4, confirmed_at = $5, confirmed_by = $6, updated_at = $7
WHERE id = $1
`

type UpdateFiscalPeriodParams struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	ClosedAt    pgtype.Timestamptz `json:"closed_at"`
	ClosedBy    pgtype.Text        `json:"closed_by"`
	ConfirmedAt pgtype.Timestamptz `json:"confirmed_at"`
	ConfirmedBy pgtype.Text        `json:"confirmed_by"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateFiscalPeriod(ctx context.Context, arg UpdateFiscalPeriodParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateFiscalPeriod,
		arg.ID,
		arg.Status,
		arg.ClosedAt,
		arg.ClosedBy,
		arg.ConfirmedAt,
		arg.ConfirmedBy,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type rowIterator interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFiscalPeriod(row rowScanner) (FiscalPeriod, error) {
	var i FiscalPeriod
	err := row.Scan(
		&i.ID,
		&i.Month,
		&i.Year,
		&i.Status,
		&i.ClosedAt,
		&i.ClosedBy,
		&i.ConfirmedAt,
		&i.ConfirmedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
