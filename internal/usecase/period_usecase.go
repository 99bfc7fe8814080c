package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// CloseSummary describes a completed month-end close.
type CloseSummary struct {
	PeriodKey          string
	ProcessedLoans     int
	ProcessedSavings   int
	SkippedLoans       int
	SkippedSavings     int
	TotalLoanBalance   decimal.Decimal
	TotalSavingBalance decimal.Decimal
	TrialBalance       *TrialBalance
	Anomalies          []domain.IntegrityAnomaly
	Warnings           []string
	ClosedAt           time.Time
}

// ConfirmSummary describes a confirmed period.
type ConfirmSummary struct {
	PeriodKey         string
	VerifiedSnapshots int64
	ConfirmedAt       time.Time
	Warnings          []string
}

// PeriodConfig tunes the close.
type PeriodConfig struct {
	CloseTimeout time.Duration
	LockTTL      time.Duration
	Workers      int
}

// PeriodDeps groups the collaborators of PeriodUseCase.
type PeriodDeps struct {
	TxManager       TransactionManager
	PeriodRepo      FiscalPeriodRepository
	LoanRepo        LoanRepository
	SavingRepo      SavingAccountRepository
	LoanSnapshots   LoanSnapshotRepository
	OutboxRepo      OutboxRepository
	TrialBalance    *TrialBalanceUseCase
	LoanEngine      *LoanSnapshotEngine
	SavingEngine    *SavingSnapshotEngine
	Locker          PeriodLocker
	Retrier         Retrier
	IDGen           IDGenerator
	Audit           AuditRecorder
	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
}

// PeriodUseCase closes and confirms fiscal periods.
type PeriodUseCase struct {
	txManager     TransactionManager
	periodRepo    FiscalPeriodRepository
	loanRepo      LoanRepository
	savingRepo    SavingAccountRepository
	loanSnapshots LoanSnapshotRepository
	outboxRepo    OutboxRepository
	trialBalance  *TrialBalanceUseCase
	loanEngine    *LoanSnapshotEngine
	savingEngine  *SavingSnapshotEngine
	locker        PeriodLocker
	retrier       Retrier
	idGen         IDGenerator
	auditor       auditor
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	cfg           PeriodConfig
}

// NewPeriodUseCase creates a new PeriodUseCase. Zero config values fall back
// to the package defaults.
func NewPeriodUseCase(deps PeriodDeps, cfg PeriodConfig) *PeriodUseCase {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = DefaultCloseTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultCloseLockTTL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultSnapshotWorkers
	}

	return &PeriodUseCase{
		txManager:     deps.TxManager,
		periodRepo:    deps.PeriodRepo,
		loanRepo:      deps.LoanRepo,
		savingRepo:    deps.SavingRepo,
		loanSnapshots: deps.LoanSnapshots,
		outboxRepo:    deps.OutboxRepo,
		trialBalance:  deps.TrialBalance,
		loanEngine:    deps.LoanEngine,
		savingEngine:  deps.SavingEngine,
		locker:        deps.Locker,
		retrier:       deps.Retrier,
		idGen:         deps.IDGen,
		auditor: auditor{
			recorder: deps.Audit,
			idGen:    deps.IDGen,
			logger:   deps.Logger,
			metrics:  deps.Metrics,
		},
		logger:  deps.Logger,
		metrics: deps.Metrics,
		cfg:     cfg,
	}
}

// CloseMonth runs the month-end close for (month, year): trial-balance gate,
// loan and savings snapshots, then the period lock. Everything happens in one
// transaction; any failure leaves the period OPEN with no snapshots written.
func (uc *PeriodUseCase) CloseMonth(ctx context.Context, month, year int, actor domain.Actor) (*CloseSummary, error) {
	period, err := domain.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.Role.CanClosePeriods); err != nil {
		return nil, err
	}

	release, err := uc.lock(ctx, period)
	if err != nil {
		uc.countCloseError(err)
		return nil, err
	}
	defer release()

	start := time.Now()

	var summary *CloseSummary
	err = uc.retry(ctx, func() error {
		s, err := uc.closeInTx(ctx, period, actor)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		uc.countCloseError(err)
		uc.logger.Warn().Err(err).Str("period", period.Key()).Str("actor", actor.ID).Msg("period close failed")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsClosed.Inc()
		uc.metrics.CloseDuration.Observe(time.Since(start).Seconds())
		uc.metrics.SnapshotsCreated.WithLabelValues("loan").Add(float64(summary.ProcessedLoans))
		uc.metrics.SnapshotsCreated.WithLabelValues("saving").Add(float64(summary.ProcessedSavings))
		uc.metrics.SnapshotsSkipped.WithLabelValues("loan").Add(float64(summary.SkippedLoans))
		uc.metrics.SnapshotsSkipped.WithLabelValues("saving").Add(float64(summary.SkippedSavings))
		for _, a := range summary.Anomalies {
			uc.metrics.Anomalies.WithLabelValues(string(a.Kind)).Inc()
		}
	}

	summary.Warnings = appendWarning(summary.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionPeriodClose,
		entityType: domain.EntityFiscalPeriod,
		entityID:   period.Key(),
		before:     map[string]any{"status": domain.PeriodStatusOpen},
		after:      summaryState(summary),
	}))

	uc.logger.Info().
		Str("period", summary.PeriodKey).
		Str("actor", actor.ID).
		Int("processed_loans", summary.ProcessedLoans).
		Int("processed_savings", summary.ProcessedSavings).
		Int("skipped_loans", summary.SkippedLoans).
		Int("skipped_savings", summary.SkippedSavings).
		Int("anomalies", len(summary.Anomalies)).
		Dur("duration", time.Since(start)).
		Msg("period closed")

	return summary, nil
}

func (uc *PeriodUseCase) closeInTx(ctx context.Context, period domain.Period, actor domain.Actor) (*CloseSummary, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.cfg.CloseTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin close transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	fp, err := uc.periodRepo.GetForUpdate(txCtx, tx, period)
	if err != nil {
		return nil, err
	}
	if fp.IsClosed() {
		return nil, domain.ErrPeriodAlreadyClosed
	}

	tb, err := uc.trialBalance.Check(txCtx, tx, period)
	if err != nil {
		return nil, err
	}
	if err := tb.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := &CloseSummary{
		PeriodKey:          period.Key(),
		TotalLoanBalance:   decimal.Zero,
		TotalSavingBalance: decimal.Zero,
		TrialBalance:       tb,
		ClosedAt:           now,
	}

	if err := uc.snapshotLoans(txCtx, tx, period, now, summary); err != nil {
		return nil, err
	}

	if err := uc.snapshotSavings(txCtx, tx, period, summary); err != nil {
		return nil, err
	}

	if err := fp.Close(actor.ID, now); err != nil {
		return nil, err
	}
	if err := uc.periodRepo.Update(txCtx, tx, fp); err != nil {
		return nil, fmt.Errorf("lock period %s: %w", period.Key(), err)
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypePeriod, period.Key(), domain.EventTypePeriodClosed,
		domain.PeriodClosedEvent{
			PeriodKey:          period.Key(),
			ClosedBy:           actor.ID,
			ProcessedLoans:     summary.ProcessedLoans,
			ProcessedSavings:   summary.ProcessedSavings,
			TotalLoanBalance:   summary.TotalLoanBalance.StringFixed(2),
			TotalSavingBalance: summary.TotalSavingBalance.StringFixed(2),
			Anomalies:          len(summary.Anomalies),
		}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit close: %w", err)
	}

	return summary, nil
}

// snapshotLoans reads serially on tx, computes in parallel, then writes
// serially. A pgx transaction cannot be shared between goroutines.
func (uc *PeriodUseCase) snapshotLoans(ctx context.Context, tx Transaction, period domain.Period, now time.Time, summary *CloseSummary) error {
	loans, err := uc.loanRepo.ListByStatuses(ctx, tx, domain.ClosableLoanStatuses)
	if err != nil {
		return fmt.Errorf("list closable loans: %w", err)
	}

	window := period.Window()
	drafts := make([]*LoanSnapshotDraft, 0, len(loans))

	for _, loan := range loans {
		exists, err := uc.loanSnapshots.Exists(ctx, tx, loan.ID, window.End)
		if err != nil {
			return fmt.Errorf("check snapshot for loan %s: %w", loan.ID, err)
		}
		if exists {
			summary.SkippedLoans++
			continue
		}

		draft, err := uc.loanEngine.Prepare(ctx, tx, loan, window)
		if err != nil {
			return err
		}
		drafts = append(drafts, draft)
	}

	built, err := uc.loanEngine.BuildAll(ctx, drafts, now, uc.cfg.Workers)
	if err != nil {
		return err
	}

	for _, b := range built {
		if err := uc.loanEngine.Save(ctx, tx, b.Snapshot); err != nil {
			return err
		}
		summary.ProcessedLoans++
		summary.TotalLoanBalance = summary.TotalLoanBalance.Add(b.Snapshot.OutstandingBalance)
		summary.Anomalies = append(summary.Anomalies, b.Anomalies...)
	}

	return nil
}

func (uc *PeriodUseCase) snapshotSavings(ctx context.Context, tx Transaction, period domain.Period, summary *CloseSummary) error {
	accounts, err := uc.savingRepo.ListActive(ctx, tx)
	if err != nil {
		return fmt.Errorf("list active saving accounts: %w", err)
	}

	for _, account := range accounts {
		snapshot, anomalies, err := uc.savingEngine.Process(ctx, tx, account, period.End())
		if err != nil {
			return err
		}
		if snapshot == nil {
			summary.SkippedSavings++
			continue
		}
		summary.ProcessedSavings++
		summary.TotalSavingBalance = summary.TotalSavingBalance.Add(snapshot.ClosingBalance)
		summary.Anomalies = append(summary.Anomalies, anomalies...)
	}

	return nil
}

// ConfirmPeriod freezes a closed period and marks its loan snapshots
// verified.
func (uc *PeriodUseCase) ConfirmPeriod(ctx context.Context, month, year int, actor domain.Actor) (*ConfirmSummary, error) {
	period, err := domain.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	if err := domain.Authorize(actor, domain.Role.CanClosePeriods); err != nil {
		return nil, err
	}

	var summary *ConfirmSummary
	err = uc.retry(ctx, func() error {
		s, err := uc.confirmInTx(ctx, period, actor)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PeriodsConfirmed.Inc()
	}

	summary.Warnings = appendWarning(summary.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionPeriodConfirm,
		entityType: domain.EntityFiscalPeriod,
		entityID:   period.Key(),
		before:     map[string]any{"status": domain.PeriodStatusClosed, "confirmed": false},
		after: map[string]any{
			"status":             domain.PeriodStatusClosed,
			"confirmed":          true,
			"verified_snapshots": summary.VerifiedSnapshots,
		},
	}))

	uc.logger.Info().
		Str("period", period.Key()).
		Str("actor", actor.ID).
		Int64("verified_snapshots", summary.VerifiedSnapshots).
		Msg("period confirmed")

	return summary, nil
}

func (uc *PeriodUseCase) confirmInTx(ctx context.Context, period domain.Period, actor domain.Actor) (*ConfirmSummary, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin confirm transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	fp, err := uc.periodRepo.Get(txCtx, tx, period)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := fp.Confirm(actor.ID, now); err != nil {
		return nil, err
	}

	verified, err := uc.loanSnapshots.MarkVerified(txCtx, tx, period.End())
	if err != nil {
		return nil, fmt.Errorf("verify snapshots: %w", err)
	}

	if err := uc.periodRepo.Update(txCtx, tx, fp); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypePeriod, period.Key(), domain.EventTypePeriodConfirmed,
		domain.PeriodConfirmedEvent{
			PeriodKey:         period.Key(),
			ConfirmedBy:       actor.ID,
			VerifiedSnapshots: verified,
		}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit confirm: %w", err)
	}

	return &ConfirmSummary{
		PeriodKey:         period.Key(),
		VerifiedSnapshots: verified,
		ConfirmedAt:       now,
	}, nil
}

// GetPeriod returns the stored record for (month, year).
func (uc *PeriodUseCase) GetPeriod(ctx context.Context, month, year int) (*domain.FiscalPeriod, error) {
	period, err := domain.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}

	return uc.periodRepo.Get(ctx, nil, period)
}

// ListPeriods returns stored periods, newest first.
func (uc *PeriodUseCase) ListPeriods(ctx context.Context, limit, offset int) ([]*domain.FiscalPeriod, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.periodRepo.List(ctx, limit, offset)
}

// lock takes the cross-process close lock for period. Without a locker the
// row lock inside the transaction is the only guard.
func (uc *PeriodUseCase) lock(ctx context.Context, period domain.Period) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	key := "close:" + period.Key()
	unlock, ok, err := uc.locker.TryLock(ctx, key, uc.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire close lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrCloseInProgress
	}

	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to release close lock")
		}
	}, nil
}

func (uc *PeriodUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

func (uc *PeriodUseCase) countCloseError(err error) {
	if uc.metrics == nil {
		return
	}

	reason := "internal"
	var tbErr *domain.TrialBalanceError
	switch {
	case errors.As(err, &tbErr):
		reason = "trial_balance"
	case errors.Is(err, domain.ErrPeriodAlreadyClosed):
		reason = "already_closed"
	case errors.Is(err, domain.ErrCloseInProgress):
		reason = "in_progress"
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	}
	uc.metrics.CloseErrors.WithLabelValues(reason).Inc()
}

func summaryState(s *CloseSummary) map[string]any {
	return map[string]any{
		"status":               domain.PeriodStatusClosed,
		"processed_loans":      s.ProcessedLoans,
		"processed_savings":    s.ProcessedSavings,
		"skipped_loans":        s.SkippedLoans,
		"skipped_savings":      s.SkippedSavings,
		"total_loan_balance":   s.TotalLoanBalance.StringFixed(2),
		"total_saving_balance": s.TotalSavingBalance.StringFixed(2),
		"anomalies":            len(s.Anomalies),
	}
}
