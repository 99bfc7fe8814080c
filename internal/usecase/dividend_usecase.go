package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// DividendDraft is a calculated, not yet paid, distribution.
type DividendDraft struct {
	Distribution *domain.DividendDistribution
	Recipients   []*domain.DividendRecipient
	Warnings     []string
}

// DistributionResult describes a completed payout.
type DistributionResult struct {
	Distribution   *domain.DividendDistribution
	PaidRecipients int
	TotalPaid      decimal.Decimal
	Warnings       []string
}

// DividendDeps groups the collaborators of DividendUseCase.
type DividendDeps struct {
	TxManager   TransactionManager
	Dividends   DividendRepository
	Members     MemberRepository
	Savings     SavingAccountRepository
	Payments    LoanPaymentRepository
	Journal     JournalRepository
	Periods     FiscalPeriodRepository
	OutboxRepo  OutboxRepository
	Retrier     Retrier
	IDGen       IDGenerator
	Audit       AuditRecorder
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	LedgerCodes LedgerCodes
	Workers     int
}

// DividendUseCase calculates and pays the yearly member dividend.
type DividendUseCase struct {
	txManager  TransactionManager
	dividends  DividendRepository
	members    MemberRepository
	savings    SavingAccountRepository
	payments   LoanPaymentRepository
	journal    JournalRepository
	periods    FiscalPeriodRepository
	outboxRepo OutboxRepository
	retrier    Retrier
	idGen      IDGenerator
	auditor    auditor
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	codes      LedgerCodes
	workers    int
}

// NewDividendUseCase creates a new DividendUseCase.
func NewDividendUseCase(deps DividendDeps) *DividendUseCase {
	if deps.Workers <= 0 {
		deps.Workers = DefaultDividendWorkers
	}
	if deps.LedgerCodes == (LedgerCodes{}) {
		deps.LedgerCodes = DefaultLedgerCodes
	}

	return &DividendUseCase{
		txManager:  deps.TxManager,
		dividends:  deps.Dividends,
		members:    deps.Members,
		savings:    deps.Savings,
		payments:   deps.Payments,
		journal:    deps.Journal,
		periods:    deps.Periods,
		outboxRepo: deps.OutboxRepo,
		retrier:    deps.Retrier,
		idGen:      deps.IDGen,
		auditor: auditor{
			recorder: deps.Audit,
			idGen:    deps.IDGen,
			logger:   deps.Logger,
			metrics:  deps.Metrics,
		},
		logger:  deps.Logger,
		metrics: deps.Metrics,
		codes:   deps.LedgerCodes,
		workers: deps.Workers,
	}
}

// memberBasis is what a member's dividend is computed from.
type memberBasis struct {
	memberID        string
	savingAccountID string
	shareCapital    decimal.Decimal
	interestPaid    decimal.Decimal
}

// CalculateDividends creates the PENDING distribution for year together with
// one recipient per member whose payout is positive.
func (uc *DividendUseCase) CalculateDividends(ctx context.Context, year int, dividendRate, averageReturnRate decimal.Decimal, actor domain.Actor) (*DividendDraft, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	if err := domain.ValidateRate(dividendRate); err != nil {
		return nil, err
	}
	if err := domain.ValidateRate(averageReturnRate); err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, domain.Role.CanDistributeDividends); err != nil {
		return nil, err
	}

	var draft *DividendDraft
	err := uc.retry(ctx, func() error {
		d, err := uc.calculateInTx(ctx, year, dividendRate, averageReturnRate, actor)
		if err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DividendsCalculated.Inc()
	}

	dist := draft.Distribution
	draft.Warnings = appendWarning(draft.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionDividendCalculate,
		entityType: domain.EntityDividendDistribution,
		entityID:   dist.ID,
		after:      distributionState(dist),
	}))

	uc.logger.Info().
		Int("year", year).
		Str("distribution_id", dist.ID).
		Int("recipients", dist.RecipientCount).
		Str("total_payout", dist.TotalPayout.StringFixed(2)).
		Msg("dividends calculated")

	return draft, nil
}

func (uc *DividendUseCase) calculateInTx(ctx context.Context, year int, dividendRate, averageReturnRate decimal.Decimal, actor domain.Actor) (*DividendDraft, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultCloseTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin dividend transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if _, err := uc.dividends.GetByYearForUpdate(txCtx, tx, year); err == nil {
		return nil, domain.ErrDistributionExists
	} else if !errors.Is(err, domain.ErrDistributionNotFound) {
		return nil, err
	}

	bases, err := uc.loadBases(txCtx, tx, year)
	if err != nil {
		return nil, err
	}

	amounts, err := uc.computeAll(txCtx, bases, dividendRate, averageReturnRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dist := &domain.DividendDistribution{
		ID:                 uc.idGen.Generate(),
		Year:               year,
		DividendRate:       dividendRate,
		AverageReturnRate:  averageReturnRate,
		Status:             domain.DistributionStatusPending,
		TotalShareCapital:  decimal.Zero,
		TotalInterestPaid:  decimal.Zero,
		TotalDividend:      decimal.Zero,
		TotalAverageReturn: decimal.Zero,
		TotalPayout:        decimal.Zero,
		CalculatedBy:       actor.ID,
		CalculatedAt:       now,
	}
	if err := uc.dividends.Create(txCtx, tx, dist); err != nil {
		return nil, err
	}

	recipients := make([]*domain.DividendRecipient, 0, len(bases))
	for i, b := range bases {
		a := amounts[i]
		if !a.Total.IsPositive() {
			continue
		}

		r := &domain.DividendRecipient{
			ID:                  uc.idGen.Generate(),
			DistributionID:      dist.ID,
			MemberID:            b.memberID,
			SavingAccountID:     b.savingAccountID,
			ShareCapital:        b.shareCapital,
			InterestPaid:        b.interestPaid,
			DividendAmount:      a.Dividend,
			AverageReturnAmount: a.AverageReturn,
			TotalPayout:         a.Total,
			CreatedAt:           now,
		}
		if err := uc.dividends.CreateRecipient(txCtx, tx, r); err != nil {
			return nil, fmt.Errorf("create recipient for member %s: %w", b.memberID, err)
		}
		dist.Accumulate(r)
		recipients = append(recipients, r)
	}

	if err := uc.dividends.Update(txCtx, tx, dist); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeDividend, dist.ID, domain.EventTypeDividendCalculated,
		dividendEvent(dist, actor), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit dividend calculation: %w", err)
	}

	return &DividendDraft{Distribution: dist, Recipients: recipients}, nil
}

// loadBases reads share capital and yearly interest for every active member.
// Members without a savings account keep a zero share capital.
func (uc *DividendUseCase) loadBases(ctx context.Context, tx Transaction, year int) ([]memberBasis, error) {
	members, err := uc.members.ListActive(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}

	bases := make([]memberBasis, 0, len(members))
	for _, m := range members {
		b := memberBasis{memberID: m.ID, shareCapital: decimal.Zero}

		account, err := uc.savings.GetByMember(ctx, tx, m.ID)
		switch {
		case err == nil:
			b.savingAccountID = account.ID
			b.shareCapital = account.ShareCapital
		case errors.Is(err, domain.ErrSavingAccountNotFound):
		default:
			return nil, fmt.Errorf("load saving account for member %s: %w", m.ID, err)
		}

		b.interestPaid, err = uc.payments.SumInterestPaidByMember(ctx, tx, m.ID, year)
		if err != nil {
			return nil, fmt.Errorf("sum interest for member %s: %w", m.ID, err)
		}

		bases = append(bases, b)
	}

	return bases, nil
}

func (uc *DividendUseCase) computeAll(ctx context.Context, bases []memberBasis, dividendRate, averageReturnRate decimal.Decimal) ([]domain.DividendAmounts, error) {
	amounts := make([]domain.DividendAmounts, len(bases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for i, b := range bases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			amounts[i] = domain.ComputeDividend(b.shareCapital, b.interestPaid, dividendRate, averageReturnRate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return amounts, nil
}

// DistributeDividends pays every unpaid recipient of year's distribution into
// their savings account and approves the distribution.
func (uc *DividendUseCase) DistributeDividends(ctx context.Context, year int, actor domain.Actor) (*DistributionResult, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, domain.Role.CanDistributeDividends); err != nil {
		return nil, err
	}

	var (
		result *DistributionResult
		paid   []*domain.DividendRecipient
	)
	err := uc.retry(ctx, func() error {
		r, p, err := uc.distributeInTx(ctx, year, actor)
		if err != nil {
			return err
		}
		result, paid = r, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.DividendsDistributed.Inc()
		for _, r := range paid {
			uc.metrics.DividendPayout.Observe(r.TotalPayout.InexactFloat64())
		}
	}

	dist := result.Distribution
	result.Warnings = appendWarning(result.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionDividendDistribute,
		entityType: domain.EntityDividendDistribution,
		entityID:   dist.ID,
		before:     map[string]any{"status": domain.DistributionStatusPending},
		after: map[string]any{
			"status":          dist.Status,
			"paid_recipients": result.PaidRecipients,
			"total_paid":      result.TotalPaid.StringFixed(2),
		},
	}))

	uc.logger.Info().
		Int("year", year).
		Str("distribution_id", dist.ID).
		Int("paid_recipients", result.PaidRecipients).
		Str("total_paid", result.TotalPaid.StringFixed(2)).
		Msg("dividends distributed")

	return result, nil
}

func (uc *DividendUseCase) distributeInTx(ctx context.Context, year int, actor domain.Actor) (*DistributionResult, []*domain.DividendRecipient, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultCloseTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin distribution transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Payouts are journaled into the current month, which must still be open.
	now := time.Now().UTC()
	period := domain.PeriodOf(now)
	fp, err := uc.periods.GetForUpdate(txCtx, tx, period)
	if err != nil {
		return nil, nil, err
	}
	if fp.IsClosed() {
		return nil, nil, domain.ErrPeriodAlreadyClosed
	}

	dist, err := uc.dividends.GetByYearForUpdate(txCtx, tx, year)
	if err != nil {
		return nil, nil, err
	}
	if dist.IsApproved() {
		return nil, nil, domain.ErrDistributionAlreadyApproved
	}

	recipients, err := uc.dividends.ListRecipients(txCtx, tx, dist.ID)
	if err != nil {
		return nil, nil, err
	}

	payable := make([]*domain.DividendRecipient, 0, len(recipients))
	for _, r := range recipients {
		if r.PaidAt != nil || !r.TotalPayout.IsPositive() {
			continue
		}
		if r.SavingAccountID == "" {
			return nil, nil, fmt.Errorf("%w: member %s has no saving account", domain.ErrSavingAccountNotFound, r.MemberID)
		}
		payable = append(payable, r)
	}

	accounts, err := uc.lockAccounts(txCtx, tx, payable)
	if err != nil {
		return nil, nil, err
	}

	periodKey := period.Key()
	totalPaid := decimal.Zero

	for _, r := range payable {
		account := accounts[r.SavingAccountID]
		account.Credit(r.TotalPayout, now)
		if err := uc.savings.UpdateBalance(txCtx, tx, account); err != nil {
			return nil, nil, fmt.Errorf("credit saving account %s: %w", account.ID, err)
		}

		if err := uc.postPayout(txCtx, tx, r, periodKey, actor, now); err != nil {
			return nil, nil, err
		}

		if err := uc.dividends.MarkRecipientPaid(txCtx, tx, r.ID, now); err != nil {
			return nil, nil, err
		}
		r.PaidAt = &now
		totalPaid = totalPaid.Add(r.TotalPayout)
	}

	if err := dist.Approve(actor.ID, now); err != nil {
		return nil, nil, err
	}
	if err := uc.dividends.Update(txCtx, tx, dist); err != nil {
		return nil, nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeDividend, dist.ID, domain.EventTypeDividendDistributed,
		dividendEvent(dist, actor), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, fmt.Errorf("commit distribution: %w", err)
	}

	return &DistributionResult{
		Distribution:   dist,
		PaidRecipients: len(payable),
		TotalPaid:      totalPaid,
	}, payable, nil
}

// lockAccounts locks the recipients' savings rows in ascending id order.
func (uc *DividendUseCase) lockAccounts(ctx context.Context, tx Transaction, recipients []*domain.DividendRecipient) (map[string]*domain.SavingAccount, error) {
	seen := make(map[string]bool, len(recipients))
	ids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if !seen[r.SavingAccountID] {
			seen[r.SavingAccountID] = true
			ids = append(ids, r.SavingAccountID)
		}
	}
	sort.Strings(ids)

	accounts := make(map[string]*domain.SavingAccount, len(ids))
	if len(ids) == 0 {
		return accounts, nil
	}

	locked, err := uc.savings.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock saving accounts: %w", err)
	}
	for _, a := range locked {
		accounts[a.ID] = a
	}

	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrSavingAccountNotFound, id)
		}
	}

	return accounts, nil
}

// postPayout moves the payout from dividend payable to member savings.
func (uc *DividendUseCase) postPayout(ctx context.Context, tx Transaction, r *domain.DividendRecipient, periodKey string, actor domain.Actor, at time.Time) error {
	description := fmt.Sprintf("dividend payout for member %s", r.MemberID)

	lines := []*domain.JournalEntry{
		{
			AccountCode: uc.codes.DividendPayable,
			Debit:       r.TotalPayout,
			Credit:      decimal.Zero,
		},
		{
			AccountCode: uc.codes.MemberSavings,
			Debit:       decimal.Zero,
			Credit:      r.TotalPayout,
		},
	}

	for _, line := range lines {
		line.ID = uc.idGen.Generate()
		line.PeriodKey = periodKey
		line.TransactionDate = at
		line.ReferenceType = domain.ReferenceDividend
		line.ReferenceID = r.ID
		line.Description = description
		line.CreatedBy = actor.ID
		line.CreatedAt = at

		if err := uc.journal.Create(ctx, tx, line); err != nil {
			return fmt.Errorf("post dividend journal for member %s: %w", r.MemberID, err)
		}
	}

	return nil
}

// GetDistribution returns the distribution for year.
func (uc *DividendUseCase) GetDistribution(ctx context.Context, year int) (*domain.DividendDistribution, error) {
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	return uc.dividends.GetByYear(ctx, year)
}

func (uc *DividendUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

func dividendEvent(dist *domain.DividendDistribution, actor domain.Actor) domain.DividendEvent {
	return domain.DividendEvent{
		DistributionID: dist.ID,
		Year:           dist.Year,
		Status:         string(dist.Status),
		RecipientCount: dist.RecipientCount,
		TotalPayout:    dist.TotalPayout.StringFixed(2),
		Actor:          actor.ID,
	}
}

func distributionState(dist *domain.DividendDistribution) map[string]any {
	return map[string]any{
		"year":                dist.Year,
		"status":              dist.Status,
		"dividend_rate":       dist.DividendRate.String(),
		"average_return_rate": dist.AverageReturnRate.String(),
		"recipient_count":     dist.RecipientCount,
		"total_payout":        dist.TotalPayout.StringFixed(2),
	}
}
