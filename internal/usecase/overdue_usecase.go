package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// OverdueUseCase moves active loans past maturity to DEFAULTED.
type OverdueUseCase struct {
	txManager  TransactionManager
	loans      LoanRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	auditor    auditor
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewOverdueUseCase creates a new OverdueUseCase.
func NewOverdueUseCase(
	txManager TransactionManager,
	loans LoanRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	audit AuditRecorder,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *OverdueUseCase {
	return &OverdueUseCase{
		txManager:  txManager,
		loans:      loans,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		auditor:    auditor{recorder: audit, idGen: idGen, logger: logger, metrics: m},
		logger:     logger,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MarkOverdue defaults every overdue loan and returns how many changed.
func (uc *OverdueUseCase) MarkOverdue(ctx context.Context) (int, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultCloseTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := uc.now()
	candidates, err := uc.loans.ListOverdue(txCtx, tx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue loans: %w", err)
	}

	marked := make([]*domain.Loan, 0, len(candidates))
	for _, loan := range candidates {
		// The query is a prefilter; the domain rule decides.
		if !loan.IsOverdue(now) {
			continue
		}

		if err := uc.loans.UpdateStatus(txCtx, tx, loan.ID, domain.LoanStatusDefaulted, now); err != nil {
			return 0, fmt.Errorf("default loan %s: %w", loan.ID, err)
		}

		maturity := ""
		if loan.MaturityDate != nil {
			maturity = loan.MaturityDate.Format(time.DateOnly)
		}
		event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeLoan, loan.ID, domain.EventTypeLoanDefaulted,
			domain.LoanDefaultedEvent{
				LoanID:             loan.ID,
				MemberID:           loan.MemberID,
				OutstandingBalance: loan.OutstandingBalance.StringFixed(2),
				MaturityDate:       maturity,
			}, now)
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return 0, fmt.Errorf("create outbox event: %w", err)
		}

		marked = append(marked, loan)
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.OverdueLoansMarked.Add(float64(len(marked)))
	}

	for _, loan := range marked {
		uc.auditor.record(ctx, auditEntry{
			actor:      domain.SystemActor,
			action:     domain.AuditActionLoanMarkOverdue,
			entityType: domain.EntityLoan,
			entityID:   loan.ID,
			before:     map[string]any{"status": domain.LoanStatusActive},
			after:      map[string]any{"status": domain.LoanStatusDefaulted},
		})
	}

	if len(marked) > 0 {
		uc.logger.Info().Int("count", len(marked)).Msg("overdue loans defaulted")
	}

	return len(marked), nil
}
