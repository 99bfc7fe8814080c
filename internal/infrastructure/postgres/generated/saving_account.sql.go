package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listActiveSavingAccounts = `-- name: ListActiveSavingAccounts :many
SELECT id, member_id, account_number, balance, available_balance, share_capital, interest_rate, active, frozen, version, created_at, updated_at
FROM saving_accounts
WHERE active = true
ORDER BY id
`

func (q *Queries) ListActiveSavingAccounts(ctx context.Context) ([]SavingAccount, error) {
	rows, err := q.db.Query(ctx, listActiveSavingAccounts)
	if err != nil {
		return nil, err
	}
	return scanSavingAccounts(rows)
}

const getSavingAccountByMember = `-- name: GetSavingAccountByMember :one
SELECT id, member_id, account_number, balance, available_balance, share_capital, interest_rate, active, frozen, version, created_at, updated_at
FROM saving_accounts
WHERE member_id = $1 AND active = true
ORDER BY created_at, id
LIMIT 1
`

func (q *Queries) GetSavingAccountByMember(ctx context.Context, memberID string) (SavingAccount, error) {
	row := q.db.QueryRow(ctx, getSavingAccountByMember, memberID)
	return scanSavingAccount(row)
}

const getSavingAccountsForUpdate = `-- name: GetSavingAccountsForUpdate :many
SELECT id, member_id, account_number, balance, available_balance, share_capital, interest_rate, active, frozen, version, created_at, updated_at
FROM saving_accounts
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

func (q *Queries) GetSavingAccountsForUpdate(ctx context.Context, ids []string) ([]SavingAccount, error) {
	rows, err := q.db.Query(ctx, getSavingAccountsForUpdate, ids)
	if err != nil {
		return nil, err
	}
	return scanSavingAccounts(rows)
}

const updateSavingBalance = `-- name: UpdateSavingBalance :execrows
UPDATE saving_accounts
SET balance = $2, available_balance = $3, version = $4, updated_at = $5
WHERE id = $1 AND version = $4 - 1
`

type UpdateSavingBalanceParams struct {
	ID               string             `json:"id"`
	Balance          pgtype.Numeric     `json:"balance"`
	AvailableBalance pgtype.Numeric     `json:"available_balance"`
	Version          int64              `json:"version"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateSavingBalance(ctx context.Context, arg UpdateSavingBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateSavingBalance,
		arg.ID,
		arg.Balance,
		arg.AvailableBalance,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanSavingAccount(row rowScanner) (SavingAccount, error) {
	var i SavingAccount
	err := row.Scan(
		&i.ID,
		&i.MemberID,
		&i.AccountNumber,
		&i.Balance,
		&i.AvailableBalance,
		&i.ShareCapital,
		&i.InterestRate,
		&i.Active,
		&i.Frozen,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanSavingAccounts(rows rowIterator) ([]SavingAccount, error) {
	defer rows.Close()
	var items []SavingAccount
	for rows.Next() {
		i, err := scanSavingAccount(rows)
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
