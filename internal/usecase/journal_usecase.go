package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// CreateAccountInput defines input for creating a ledger account.
type CreateAccountInput struct {
	Code       string
	Name       string
	ParentCode *string
}

// JournalLine is one side of a manual posting.
type JournalLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// PostEntriesInput defines a balanced manual journal.
type PostEntriesInput struct {
	TransactionDate time.Time
	ReferenceType   domain.ReferenceType
	ReferenceID     string
	Description     string
	Lines           []JournalLine
}

// PostResult is the outcome of PostEntries.
type PostResult struct {
	Entries  []*domain.JournalEntry
	Warnings []string
}

// JournalUseCase maintains the chart of accounts and posts manual journals.
type JournalUseCase struct {
	txManager   TransactionManager
	accountRepo LedgerAccountRepository
	journalRepo JournalRepository
	periodRepo  FiscalPeriodRepository
	idGen       IDGenerator
	auditor     auditor
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(
	txManager TransactionManager,
	accountRepo LedgerAccountRepository,
	journalRepo JournalRepository,
	periodRepo FiscalPeriodRepository,
	idGen IDGenerator,
	audit AuditRecorder,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *JournalUseCase {
	return &JournalUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		periodRepo:  periodRepo,
		idGen:       idGen,
		auditor:     auditor{recorder: audit, idGen: idGen, logger: logger, metrics: m},
		logger:      logger,
		metrics:     m,
	}
}

// CreateAccount adds an account to the chart. The category follows from the
// first digit of the code.
func (uc *JournalUseCase) CreateAccount(ctx context.Context, input CreateAccountInput, actor domain.Actor) (*domain.LedgerAccount, []string, error) {
	if err := domain.Authorize(actor, domain.Role.CanManageAccounts); err != nil {
		return nil, nil, err
	}

	code := strings.TrimSpace(input.Code)
	category, err := domain.CategoryFromCode(code)
	if err != nil {
		return nil, nil, err
	}

	account := &domain.LedgerAccount{
		Code:       code,
		Name:       strings.TrimSpace(input.Name),
		Category:   category,
		ParentCode: input.ParentCode,
		CreatedAt:  time.Now().UTC(),
	}
	if err := account.Validate(); err != nil {
		return nil, nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if account.ParentCode != nil {
		if _, err := uc.accountRepo.GetByCode(txCtx, tx, *account.ParentCode); err != nil {
			return nil, nil, fmt.Errorf("parent account %s: %w", *account.ParentCode, err)
		}
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	warnings := appendWarning(nil, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionAccountCreate,
		entityType: domain.EntityLedgerAccount,
		entityID:   account.Code,
		after:      account,
	}))

	return account, warnings, nil
}

// DeleteAccount removes an account that no journal entry references.
func (uc *JournalUseCase) DeleteAccount(ctx context.Context, code string, actor domain.Actor) ([]string, error) {
	if err := domain.Authorize(actor, domain.Role.CanManageAccounts); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByCode(txCtx, tx, code)
	if err != nil {
		return nil, err
	}

	inUse, err := uc.accountRepo.HasEntries(txCtx, tx, code)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, domain.ErrAccountInUse
	}

	if err := uc.accountRepo.Delete(txCtx, tx, code); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return appendWarning(nil, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionAccountDelete,
		entityType: domain.EntityLedgerAccount,
		entityID:   code,
		before:     account,
	})), nil
}

// ListAccounts returns the chart of accounts ordered by code.
func (uc *JournalUseCase) ListAccounts(ctx context.Context) ([]*domain.LedgerAccount, error) {
	return uc.accountRepo.List(ctx)
}

// PostEntries posts a balanced set of journal lines dated TransactionDate.
// The target period must still be open.
func (uc *JournalUseCase) PostEntries(ctx context.Context, input PostEntriesInput, actor domain.Actor) (*PostResult, error) {
	if err := domain.Authorize(actor, domain.Role.CanPostJournal); err != nil {
		return nil, err
	}

	if input.ReferenceType == "" {
		input.ReferenceType = domain.ReferenceManual
	}
	if input.TransactionDate.IsZero() {
		input.TransactionDate = time.Now().UTC()
	}

	entries, err := uc.buildEntries(input, actor)
	if err != nil {
		return nil, err
	}

	period := domain.PeriodOf(input.TransactionDate)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Locking the period row orders this posting against a concurrent close.
	fp, err := uc.periodRepo.GetForUpdate(txCtx, tx, period)
	if err != nil {
		return nil, err
	}
	if fp.IsClosed() {
		return nil, domain.ErrPeriodAlreadyClosed
	}

	checked := make(map[string]bool)
	for _, e := range entries {
		if checked[e.AccountCode] {
			continue
		}
		if _, err := uc.accountRepo.GetByCode(txCtx, tx, e.AccountCode); err != nil {
			return nil, fmt.Errorf("account %s: %w", e.AccountCode, err)
		}
		checked[e.AccountCode] = true
	}

	for _, e := range entries {
		if err := uc.journalRepo.Create(txCtx, tx, e); err != nil {
			return nil, fmt.Errorf("failed to create journal entry: %w", err)
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.JournalEntriesPosted.Add(float64(len(entries)))
	}

	result := &PostResult{Entries: entries}
	result.Warnings = appendWarning(result.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionJournalPost,
		entityType: domain.EntityJournal,
		entityID:   entries[0].ID,
		after: map[string]any{
			"period_key":     period.Key(),
			"reference_type": input.ReferenceType,
			"reference_id":   input.ReferenceID,
			"lines":          len(entries),
		},
	}))

	uc.logger.Info().
		Str("period", period.Key()).
		Str("actor", actor.ID).
		Int("lines", len(entries)).
		Msg("journal posted")

	return result, nil
}

func (uc *JournalUseCase) buildEntries(input PostEntriesInput, actor domain.Actor) ([]*domain.JournalEntry, error) {
	if len(input.Lines) < 2 {
		return nil, fmt.Errorf("%w: a journal needs at least two lines", domain.ErrUnbalancedEntries)
	}
	if len(input.Lines) > domain.MaxJournalLines {
		return nil, fmt.Errorf("%w: a journal takes at most %d lines", domain.ErrValidation, domain.MaxJournalLines)
	}

	now := time.Now().UTC()
	periodKey := domain.PeriodOf(input.TransactionDate).Key()
	debits, credits := decimal.Zero, decimal.Zero

	entries := make([]*domain.JournalEntry, 0, len(input.Lines))
	for i, line := range input.Lines {
		e := &domain.JournalEntry{
			ID:              uc.idGen.Generate(),
			PeriodKey:       periodKey,
			AccountCode:     strings.TrimSpace(line.AccountCode),
			Debit:           line.Debit,
			Credit:          line.Credit,
			TransactionDate: input.TransactionDate,
			ReferenceType:   input.ReferenceType,
			ReferenceID:     input.ReferenceID,
			Description:     input.Description,
			CreatedBy:       actor.ID,
			CreatedAt:       now,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := domain.ValidateAmount(e.Amount()); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
		entries = append(entries, e)
	}

	if !debits.Equal(credits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", domain.ErrUnbalancedEntries, debits.StringFixed(2), credits.StringFixed(2))
	}

	return entries, nil
}
