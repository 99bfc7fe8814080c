package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createJournalEntry = `-- name: CreateJournalEntry :exec
INSERT INTO journal_entries (id, period_key, account_code, debit, credit, transaction_date, reference_type, reference_id, description, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateJournalEntryParams struct {
	ID              string             `json:"id"`
	PeriodKey       string             `json:"period_key"`
	AccountCode     string             `json:"account_code"`
	Debit           pgtype.Numeric     `json:"debit"`
	Credit          pgtype.Numeric     `json:"credit"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	ReferenceType   string             `json:"reference_type"`
	ReferenceID     string             `json:"reference_id"`
	Description     string             `json:"description"`
	CreatedBy       string             `json:"created_by"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) error {
	_, err := q.db.Exec(ctx, createJournalEntry,
		arg.ID,
		arg.PeriodKey,
		arg.AccountCode,
		arg.Debit,
		arg.Credit,
		arg.TransactionDate,
		arg.ReferenceType,
		arg.ReferenceID,
		arg.Description,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}

const sumJournalByPeriod = `-- name: SumJournalByPeriod :one
SELECT COALESCE(SUM(debit), 0)::numeric AS debits, COALESCE(SUM(credit), 0)::numeric AS credits
FROM journal_entries
WHERE period_key = $1
`

type SumJournalByPeriodRow struct {
	Debits  pgtype.Numeric `json:"debits"`
	Credits pgtype.Numeric `json:"credits"`
}

func (q *Queries) SumJournalByPeriod(ctx context.Context, periodKey string) (SumJournalByPeriodRow, error) {
	row := q.db.QueryRow(ctx, sumJournalByPeriod, periodKey)
	var i SumJournalByPeriodRow
	err := row.Scan(&i.Debits, &i.Credits)
	return i, err
}

type AccountTotalsRow struct {
	AccountCode string         `json:"account_code"`
	AccountName string         `json:"account_name"`
	Debits      pgtype.Numeric `json:"debits"`
	Credits     pgtype.Numeric `json:"credits"`
}

const sumJournalByAccountForPeriod = `-- name: SumJournalByAccountForPeriod :many
SELECT je.account_code, la.name AS account_name,
       COALESCE(SUM(je.debit), 0)::numeric AS debits, COALESCE(SUM(je.credit), 0)::numeric AS credits
FROM journal_entries je
JOIN ledger_accounts la ON la.code = je.account_code
WHERE je.period_key = $1
GROUP BY je.account_code, la.name
ORDER BY je.account_code
`

func (q *Queries) SumJournalByAccountForPeriod(ctx context.Context, periodKey string) ([]AccountTotalsRow, error) {
	rows, err := q.db.Query(ctx, sumJournalByAccountForPeriod, periodKey)
	if err != nil {
		return nil, err
	}
	return scanAccountTotals(rows)
}

const sumJournalByAccountBetween = `-- name: SumJournalByAccountBetween :many
SELECT je.account_code, la.name AS account_name,
       COALESCE(SUM(je.debit), 0)::numeric AS debits, COALESCE(SUM(je.credit), 0)::numeric AS credits
FROM journal_entries je
JOIN ledger_accounts la ON la.code = je.account_code
WHERE je.transaction_date >= $1 AND je.transaction_date < $2
GROUP BY je.account_code, la.name
ORDER BY je.account_code
`

type SumJournalByAccountBetweenParams struct {
	Start pgtype.Timestamptz `json:"start"`
	End   pgtype.Timestamptz `json:"end"`
}

func (q *Queries) SumJournalByAccountBetween(ctx context.Context, arg SumJournalByAccountBetweenParams) ([]AccountTotalsRow, error) {
	rows, err := q.db.Query(ctx, sumJournalByAccountBetween, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	return scanAccountTotals(rows)
}

const sumJournalByAccountBefore = `-- name: SumJournalByAccountBefore :many
SELECT je.account_code, la.name AS account_name,
       COALESCE(SUM(je.debit), 0)::numeric AS debits, COALESCE(SUM(je.credit), 0)::numeric AS credits
FROM journal_entries je
JOIN ledger_accounts la ON la.code = je.account_code
WHERE je.transaction_date < $1
GROUP BY je.account_code, la.name
ORDER BY je.account_code
`

func (q *Queries) SumJournalByAccountBefore(ctx context.Context, before pgtype.Timestamptz) ([]AccountTotalsRow, error) {
	rows, err := q.db.Query(ctx, sumJournalByAccountBefore, before)
	if err != nil {
		return nil, err
	}
	return scanAccountTotals(rows)
}

func scanAccountTotals(rows rowIterator) ([]AccountTotalsRow, error) {
	defer rows.Close()
	var items []AccountTotalsRow
	for rows.Next() {
		var i AccountTotalsRow
		if err := rows.Scan(
			&i.AccountCode,
			&i.AccountName,
			&i.Debits,
			&i.Credits,
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
