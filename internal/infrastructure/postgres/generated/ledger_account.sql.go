package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerAccount = `-- name: CreateLedgerAccount :exec
INSERT INTO ledger_accounts (code, name, category, parent_code, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateLedgerAccountParams struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	ParentCode pgtype.Text        `json:"parent_code"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLedgerAccount(ctx context.Context, arg CreateLedgerAccountParams) error {
	_, err := q.db.Exec(ctx, createLedgerAccount,
		arg.Code,
		arg.Name,
		arg.Category,
		arg.ParentCode,
		arg.CreatedAt,
	)
	return err
}

const deleteLedgerAccount = `-- name: DeleteLedgerAccount :execrows
DELETE FROM ledger_accounts WHERE code = $1
`

func (q *Queries) DeleteLedgerAccount(ctx context.Context, code string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteLedgerAccount, code)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getLedgerAccount = `-- name: GetLedgerAccount :one
SELECT code, name, category, parent_code, created_at FROM ledger_accounts WHERE code = $1
`

func (q *Queries) GetLedgerAccount(ctx context.Context, code string) (LedgerAccount, error) {
	row := q.db.QueryRow(ctx, getLedgerAccount, code)
	var i LedgerAccount
	err := row.Scan(
		&i.Code,
		&i.Name,
		&i.Category,
		&i.ParentCode,
		&i.CreatedAt,
	)
	return i, err
}

const ledgerAccountHasEntries = `-- name: LedgerAccountHasEntries :one
SELECT EXISTS (SELECT 1 FROM journal_entries WHERE account_code = $1)
`

func (q *Queries) LedgerAccountHasEntries(ctx context.Context, accountCode string) (bool, error) {
	row := q.db.QueryRow(ctx, ledgerAccountHasEntries, accountCode)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listLedgerAccounts = `-- name: ListLedgerAccounts :many
SELECT code, name, category, parent_code, created_at FROM ledger_accounts ORDER BY code
`

func (q *Queries) ListLedgerAccounts(ctx context.Context) ([]LedgerAccount, error) {
	rows, err := q.db.Query(ctx, listLedgerAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerAccount
	for rows.Next() {
		var i LedgerAccount
		if err := rows.Scan(
			&i.Code,
			&i.Name,
			&i.Category,
			&i.ParentCode,
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
