package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// LedgerAccountRepository implements usecase.LedgerAccountRepository.
type LedgerAccountRepository struct {
	queries *generated.Queries
}

// NewLedgerAccountRepository creates a new LedgerAccountRepository.
func NewLedgerAccountRepository(db generated.DBTX) *LedgerAccountRepository {
	return &LedgerAccountRepository{queries: generated.New(db)}
}

// Create inserts a chart-of-accounts entry.
func (r *LedgerAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.LedgerAccount) error {
	err := queriesFor(r.queries, tx).CreateLedgerAccount(ctx, generated.CreateLedgerAccountParams{
		Code:       account.Code,
		Name:       account.Name,
		Category:   string(account.Category),
		ParentCode: optTextToPg(account.ParentCode),
		CreatedAt:  timeToPgTimestamptz(account.CreatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrAccountExists
	}

	return err
}

// GetByCode retrieves an account by its code.
func (r *LedgerAccountRepository) GetByCode(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerAccount, error) {
	row, err := queriesFor(r.queries, tx).GetLedgerAccount(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToLedgerAccount(row), nil
}

// List returns the chart ordered by code.
func (r *LedgerAccountRepository) List(ctx context.Context) ([]*domain.LedgerAccount, error) {
	rows, err := r.queries.ListLedgerAccounts(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.LedgerAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToLedgerAccount(row))
	}

	return accounts, nil
}

// Delete removes an account.
func (r *LedgerAccountRepository) Delete(ctx context.Context, tx usecase.Transaction, code string) error {
	n, err := queriesFor(r.queries, tx).DeleteLedgerAccount(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// HasEntries reports whether any journal line references the account.
func (r *LedgerAccountRepository) HasEntries(ctx context.Context, tx usecase.Transaction, code string) (bool, error) {
	return queriesFor(r.queries, tx).LedgerAccountHasEntries(ctx, code)
}

func rowToLedgerAccount(row generated.LedgerAccount) *domain.LedgerAccount {
	return &domain.LedgerAccount{
		Code:       row.Code,
		Name:       row.Name,
		Category:   domain.AccountCategory(row.Category),
		ParentCode: pgToOptText(row.ParentCode),
		CreatedAt:  row.CreatedAt.Time,
	}
}
