package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// SavingSnapshotEngine produces the monthly snapshot of a savings account.
// It records the live balance as both opening and closing and leaves the
// period deltas at zero; true delta accounting is not done here.
type SavingSnapshotEngine struct {
	snapshotRepo SavingSnapshotRepository
	idGen        IDGenerator
	logger       zerolog.Logger
}

// NewSavingSnapshotEngine creates a new SavingSnapshotEngine.
func NewSavingSnapshotEngine(snapshotRepo SavingSnapshotRepository, idGen IDGenerator, logger zerolog.Logger) *SavingSnapshotEngine {
	return &SavingSnapshotEngine{
		snapshotRepo: snapshotRepo,
		idGen:        idGen,
		logger:       logger,
	}
}

// Process snapshots account at balanceDate. A nil snapshot with a nil error
// means one already existed.
func (e *SavingSnapshotEngine) Process(ctx context.Context, tx Transaction, account *domain.SavingAccount, balanceDate time.Time) (*domain.SavingBalanceSnapshot, []domain.IntegrityAnomaly, error) {
	exists, err := e.snapshotRepo.Exists(ctx, tx, account.ID, balanceDate)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, nil
	}

	snapshot := &domain.SavingBalanceSnapshot{
		ID:              e.idGen.Generate(),
		SavingAccountID: account.ID,
		BalanceDate:     balanceDate,
		OpeningBalance:  account.Balance,
		ClosingBalance:  account.Balance,
		Deposits:        decimal.Zero,
		Withdrawals:     decimal.Zero,
		InterestEarned:  decimal.Zero,
		Fees:            decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}

	var anomalies []domain.IntegrityAnomaly
	if account.Balance.IsNegative() {
		e.logger.Warn().
			Str("saving_account_id", account.ID).
			Str("balance", account.Balance.StringFixed(2)).
			Msg("integrity anomaly: negative savings balance")

		anomalies = append(anomalies, domain.IntegrityAnomaly{
			EntityType: domain.EntitySavingAccount,
			EntityID:   account.ID,
			Kind:       domain.AnomalyNegativeSavingBalance,
			Amount:     account.Balance,
			Message:    fmt.Sprintf("saving account %s has negative balance %s", account.ID, account.Balance.StringFixed(2)),
		})
	}

	if err := e.snapshotRepo.Create(ctx, tx, snapshot); err != nil {
		return nil, nil, fmt.Errorf("save snapshot for saving account %s: %w", account.ID, err)
	}

	return snapshot, anomalies, nil
}
