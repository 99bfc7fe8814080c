package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// PaymentResult is the outcome of ApplyPayment.
type PaymentResult struct {
	Payment    *domain.LoanPayment
	Loan       *domain.Loan
	Allocation domain.PaymentAllocation
	Warnings   []string
}

// LoanPaymentDeps groups the collaborators of LoanPaymentUseCase.
type LoanPaymentDeps struct {
	TxManager   TransactionManager
	Loans       LoanRepository
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
}

// LoanPaymentUseCase approves member loan payments and books them to the
// loan and the journal.
type LoanPaymentUseCase struct {
	txManager  TransactionManager
	loans      LoanRepository
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
}

// NewLoanPaymentUseCase creates a new LoanPaymentUseCase.
func NewLoanPaymentUseCase(deps LoanPaymentDeps) *LoanPaymentUseCase {
	if deps.LedgerCodes == (LedgerCodes{}) {
		deps.LedgerCodes = DefaultLedgerCodes
	}

	return &LoanPaymentUseCase{
		txManager:  deps.TxManager,
		loans:      deps.Loans,
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
	}
}

// ApplyPayment allocates amount to the loan's penalty, accrued interest and
// principal, in that order. Amounts beyond what is owed are rejected.
func (uc *LoanPaymentUseCase) ApplyPayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentDate time.Time, actor domain.Actor) (*PaymentResult, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, domain.Role.CanPostJournal); err != nil {
		return nil, err
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	paymentDate = paymentDate.UTC()

	var result *PaymentResult
	op := func() error {
		r, err := uc.applyInTx(ctx, loanID, amount, paymentDate, actor)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoanPaymentsApplied.Inc()
	}

	result.Warnings = appendWarning(result.Warnings, uc.auditor.record(ctx, auditEntry{
		actor:      actor,
		action:     domain.AuditActionLoanPayment,
		entityType: domain.EntityLoan,
		entityID:   loanID,
		after: map[string]any{
			"payment_id":     result.Payment.ID,
			"payment_type":   result.Payment.PaymentType,
			"penalty_paid":   result.Allocation.PenaltyPaid.StringFixed(2),
			"interest_paid":  result.Allocation.InterestPaid.StringFixed(2),
			"principal_paid": result.Allocation.PrincipalPaid.StringFixed(2),
			"outstanding":    result.Loan.OutstandingBalance.StringFixed(2),
			"status":         result.Loan.Status,
		},
	}))

	uc.logger.Info().
		Str("loan_id", loanID).
		Str("payment_id", result.Payment.ID).
		Str("amount", amount.StringFixed(2)).
		Str("status", string(result.Loan.Status)).
		Msg("loan payment applied")

	return result, nil
}

func (uc *LoanPaymentUseCase) applyInTx(ctx context.Context, loanID string, amount decimal.Decimal, paymentDate time.Time, actor domain.Actor) (*PaymentResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	period := domain.PeriodOf(paymentDate)
	fp, err := uc.periods.GetForUpdate(txCtx, tx, period)
	if err != nil {
		return nil, err
	}
	if fp.IsClosed() {
		return nil, domain.ErrPeriodAlreadyClosed
	}

	loan, err := uc.loans.GetByIDForUpdate(txCtx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsClosable() {
		return nil, fmt.Errorf("%w: loan %s is %s", domain.ErrLoanNotPayable, loan.ID, loan.Status)
	}

	interestDue := loan.InterestDue(paymentDate)
	alloc, err := domain.AllocatePayment(amount, loan.PenaltyBalance, interestDue, loan.OutstandingBalance)
	if err != nil {
		return nil, err
	}
	if alloc.Unallocated.IsPositive() {
		return nil, fmt.Errorf("%w: %s exceeds amount owed by %s", domain.ErrOverpayment, amount.StringFixed(2), alloc.Unallocated.StringFixed(2))
	}

	loan.ApplyAllocation(alloc, paymentDate)

	paymentType := domain.PaymentTypeRepayment
	if loan.Status == domain.LoanStatusCompleted {
		paymentType = domain.PaymentTypeClosure
	}

	now := time.Now().UTC()
	payment := &domain.LoanPayment{
		ID:            uc.idGen.Generate(),
		LoanID:        loan.ID,
		MemberID:      loan.MemberID,
		PaymentType:   paymentType,
		Status:        domain.PaymentStatusCompleted,
		Amount:        amount,
		PrincipalPaid: alloc.PrincipalPaid,
		InterestPaid:  alloc.InterestPaid,
		PenaltyPaid:   alloc.PenaltyPaid,
		PaymentDate:   paymentDate,
		ApprovedBy:    actor.ID,
		CreatedAt:     now,
	}
	if err := uc.payments.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	if err := uc.loans.UpdateBalances(txCtx, tx, loan); err != nil {
		return nil, err
	}

	if err := uc.postPayment(txCtx, tx, payment, period.Key(), actor, now); err != nil {
		return nil, err
	}

	event := domain.NewOutboxEvent(uc.idGen.Generate(), domain.AggregateTypeLoan, loan.ID, domain.EventTypeLoanPaymentApplied,
		domain.LoanPaymentAppliedEvent{
			LoanID:        loan.ID,
			PaymentID:     payment.ID,
			PenaltyPaid:   alloc.PenaltyPaid.StringFixed(2),
			InterestPaid:  alloc.InterestPaid.StringFixed(2),
			PrincipalPaid: alloc.PrincipalPaid.StringFixed(2),
			Outstanding:   loan.OutstandingBalance.StringFixed(2),
		}, now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &PaymentResult{Payment: payment, Loan: loan, Allocation: alloc}, nil
}

// postPayment debits cash for the whole payment and credits receivables,
// interest income and penalty income for their shares. Zero shares are
// not posted.
func (uc *LoanPaymentUseCase) postPayment(ctx context.Context, tx Transaction, p *domain.LoanPayment, periodKey string, actor domain.Actor, at time.Time) error {
	type side struct {
		code   string
		debit  decimal.Decimal
		credit decimal.Decimal
	}

	sides := []side{
		{uc.codes.Cash, p.PenaltyPaid.Add(p.InterestPaid).Add(p.PrincipalPaid), decimal.Zero},
		{uc.codes.LoansReceivable, decimal.Zero, p.PrincipalPaid},
		{uc.codes.InterestIncome, decimal.Zero, p.InterestPaid},
		{uc.codes.PenaltyIncome, decimal.Zero, p.PenaltyPaid},
	}

	for _, s := range sides {
		if s.debit.IsZero() && s.credit.IsZero() {
			continue
		}

		entry := &domain.JournalEntry{
			ID:              uc.idGen.Generate(),
			PeriodKey:       periodKey,
			AccountCode:     s.code,
			Debit:           s.debit,
			Credit:          s.credit,
			TransactionDate: p.PaymentDate,
			ReferenceType:   domain.ReferencePayment,
			ReferenceID:     p.ID,
			Description:     fmt.Sprintf("loan payment %s", p.LoanID),
			CreatedBy:       actor.ID,
			CreatedAt:       at,
		}
		if err := uc.journal.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("post payment journal: %w", err)
		}
	}

	return nil
}
