package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// SavingAccountRepository implements usecase.SavingAccountRepository.
type SavingAccountRepository struct {
	queries *generated.Queries
}

// NewSavingAccountRepository creates a new SavingAccountRepository.
func NewSavingAccountRepository(db generated.DBTX) *SavingAccountRepository {
	return &SavingAccountRepository{queries: generated.New(db)}
}

// ListActive returns active accounts ordered by ID.
func (r *SavingAccountRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.SavingAccount, error) {
	rows, err := queriesFor(r.queries, tx).ListActiveSavingAccounts(ctx)
	if err != nil {
		return nil, err
	}

	return rowsToSavingAccounts(rows), nil
}

// GetByMember returns the member's oldest active account.
func (r *SavingAccountRepository) GetByMember(ctx context.Context, tx usecase.Transaction, memberID string) (*domain.SavingAccount, error) {
	row, err := queriesFor(r.queries, tx).GetSavingAccountByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSavingAccountNotFound
		}

		return nil, err
	}

	return rowToSavingAccount(row), nil
}

// GetByIDsForUpdate locks the accounts in ID order so concurrent payout
// runs cannot deadlock.
func (r *SavingAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.SavingAccount, error) {
	rows, err := queriesFor(r.queries, tx).GetSavingAccountsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToSavingAccounts(rows), nil
}

// UpdateBalance stores a credited account. The caller has already bumped
// Version; the write only lands on the row version it read.
func (r *SavingAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.SavingAccount) error {
	n, err := queriesFor(r.queries, tx).UpdateSavingBalance(ctx, generated.UpdateSavingBalanceParams{
		ID:               account.ID,
		Balance:          decimalToNumeric(account.Balance),
		AvailableBalance: decimalToNumeric(account.AvailableBalance),
		Version:          account.Version,
		UpdatedAt:        timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: saving account %s was modified concurrently", domain.ErrConflict, account.ID)
	}

	return nil
}

func rowsToSavingAccounts(rows []generated.SavingAccount) []*domain.SavingAccount {
	accounts := make([]*domain.SavingAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToSavingAccount(row))
	}

	return accounts
}

func rowToSavingAccount(row generated.SavingAccount) *domain.SavingAccount {
	return &domain.SavingAccount{
		ID:               row.ID,
		MemberID:         row.MemberID,
		AccountNumber:    row.AccountNumber,
		Balance:          numericToDecimal(row.Balance),
		AvailableBalance: numericToDecimal(row.AvailableBalance),
		ShareCapital:     numericToDecimal(row.ShareCapital),
		InterestRate:     numericToDecimal(row.InterestRate),
		Active:           row.Active,
		Frozen:           row.Frozen,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}

// MemberRepository implements usecase.MemberRepository.
type MemberRepository struct {
	queries *generated.Queries
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(db generated.DBTX) *MemberRepository {
	return &MemberRepository{queries: generated.New(db)}
}

// ListActive returns active members ordered by ID.
func (r *MemberRepository) ListActive(ctx context.Context, tx usecase.Transaction) ([]*domain.Member, error) {
	rows, err := queriesFor(r.queries, tx).ListActiveMembers(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]*domain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, &domain.Member{
			ID:           row.ID,
			MemberNumber: row.MemberNumber,
			Name:         row.Name,
			Active:       row.Active,
			JoinedAt:     row.JoinedAt.Time,
		})
	}

	return members, nil
}
