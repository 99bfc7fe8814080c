package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// Decimal fields marshal as JSON strings (shopspring's default), so no
// precision is lost in transit.

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// PeriodResponse represents a fiscal period.
type PeriodResponse struct {
	ID          string     `json:"id"`
	PeriodKey   string     `json:"period_key"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	Status      string     `json:"status"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy string     `json:"confirmed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PeriodFromDomain converts a fiscal period to response.
func PeriodFromDomain(p *domain.FiscalPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:          p.ID,
		PeriodKey:   p.Period().Key(),
		Month:       p.Month,
		Year:        p.Year,
		Status:      string(p.Status),
		ClosedAt:    p.ClosedAt,
		ClosedBy:    p.ClosedBy,
		ConfirmedAt: p.ConfirmedAt,
		ConfirmedBy: p.ConfirmedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PeriodsFromDomain converts fiscal periods to responses.
func PeriodsFromDomain(periods []*domain.FiscalPeriod) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// TrialBalanceResponse is the debit/credit verdict for a period.
type TrialBalanceResponse struct {
	PeriodKey string          `json:"period_key"`
	Debits    decimal.Decimal `json:"debits"`
	Credits   decimal.Decimal `json:"credits"`
	Variance  decimal.Decimal `json:"variance"`
	Balanced  bool            `json:"balanced"`
}

// TrialBalanceFromUseCase converts a trial balance to response.
func TrialBalanceFromUseCase(tb *usecase.TrialBalance) *TrialBalanceResponse {
	if tb == nil {
		return nil
	}
	return &TrialBalanceResponse{
		PeriodKey: tb.PeriodKey,
		Debits:    tb.Debits,
		Credits:   tb.Credits,
		Variance:  tb.Variance,
		Balanced:  tb.Balanced,
	}
}

// AnomalyResponse is an integrity anomaly observed during a close.
type AnomalyResponse struct {
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Message    string          `json:"message"`
}

// CloseSummaryResponse describes a completed month-end close.
type CloseSummaryResponse struct {
	PeriodKey          string                `json:"period_key"`
	ProcessedLoans     int                   `json:"processed_loans"`
	ProcessedSavings   int                   `json:"processed_savings"`
	SkippedLoans       int                   `json:"skipped_loans"`
	SkippedSavings     int                   `json:"skipped_savings"`
	TotalLoanBalance   decimal.Decimal       `json:"total_loan_balance"`
	TotalSavingBalance decimal.Decimal       `json:"total_saving_balance"`
	TrialBalance       *TrialBalanceResponse `json:"trial_balance,omitempty"`
	Anomalies          []AnomalyResponse     `json:"anomalies"`
	Warnings           []string              `json:"warnings,omitempty"`
	ClosedAt           time.Time             `json:"closed_at"`
}

// CloseSummaryFromUseCase converts a close summary to response.
func CloseSummaryFromUseCase(s *usecase.CloseSummary) *CloseSummaryResponse {
	anomalies := make([]AnomalyResponse, len(s.Anomalies))
	for i, a := range s.Anomalies {
		anomalies[i] = AnomalyResponse{
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Kind:       string(a.Kind),
			Amount:     a.Amount,
			Message:    a.Message,
		}
	}

	return &CloseSummaryResponse{
		PeriodKey:          s.PeriodKey,
		ProcessedLoans:     s.ProcessedLoans,
		ProcessedSavings:   s.ProcessedSavings,
		SkippedLoans:       s.SkippedLoans,
		SkippedSavings:     s.SkippedSavings,
		TotalLoanBalance:   s.TotalLoanBalance,
		TotalSavingBalance: s.TotalSavingBalance,
		TrialBalance:       TrialBalanceFromUseCase(s.TrialBalance),
		Anomalies:          anomalies,
		Warnings:           s.Warnings,
		ClosedAt:           s.ClosedAt,
	}
}

// ConfirmSummaryResponse describes a confirmed period.
type ConfirmSummaryResponse struct {
	PeriodKey         string    `json:"period_key"`
	VerifiedSnapshots int64     `json:"verified_snapshots"`
	ConfirmedAt       time.Time `json:"confirmed_at"`
	Warnings          []string  `json:"warnings,omitempty"`
}

// ConfirmSummaryFromUseCase converts a confirm summary to response.
func ConfirmSummaryFromUseCase(s *usecase.ConfirmSummary) *ConfirmSummaryResponse {
	return &ConfirmSummaryResponse{
		PeriodKey:         s.PeriodKey,
		VerifiedSnapshots: s.VerifiedSnapshots,
		ConfirmedAt:       s.ConfirmedAt,
		Warnings:          s.Warnings,
	}
}

// TrialBalanceRowResponse is one account line of a trial balance report.
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
}

// TrialBalanceReportResponse lists per-account totals for a period.
type TrialBalanceReportResponse struct {
	PeriodKey    string                    `json:"period_key"`
	Rows         []TrialBalanceRowResponse `json:"rows"`
	TotalDebits  decimal.Decimal           `json:"total_debits"`
	TotalCredits decimal.Decimal           `json:"total_credits"`
	Variance     decimal.Decimal           `json:"variance"`
	Balanced     bool                      `json:"balanced"`
}

// TrialBalanceReportFromUseCase converts a trial balance report to response.
func TrialBalanceReportFromUseCase(r *usecase.TrialBalanceReport) *TrialBalanceReportResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse(row)
	}
	return &TrialBalanceReportResponse{
		PeriodKey:    r.PeriodKey,
		Rows:         rows,
		TotalDebits:  r.TotalDebits,
		TotalCredits: r.TotalCredits,
		Variance:     r.Variance,
		Balanced:     r.Balanced,
	}
}

// ReportLineResponse is an account balance in its normal direction.
type ReportLineResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

func reportLines(lines []usecase.ReportLine) []ReportLineResponse {
	result := make([]ReportLineResponse, len(lines))
	for i, l := range lines {
		result[i] = ReportLineResponse(l)
	}
	return result
}

// IncomeExpenseResponse is the income statement for a date range.
type IncomeExpenseResponse struct {
	Start        string               `json:"start"`
	End          string               `json:"end"`
	Income       []ReportLineResponse `json:"income"`
	Expenses     []ReportLineResponse `json:"expenses"`
	TotalIncome  decimal.Decimal      `json:"total_income"`
	TotalExpense decimal.Decimal      `json:"total_expense"`
	NetIncome    decimal.Decimal      `json:"net_income"`
}

// IncomeExpenseFromUseCase converts an income statement to response.
func IncomeExpenseFromUseCase(r *usecase.IncomeExpenseReport) *IncomeExpenseResponse {
	return &IncomeExpenseResponse{
		Start:        r.Start.Format(dateLayout),
		End:          r.End.Format(dateLayout),
		Income:       reportLines(r.Income),
		Expenses:     reportLines(r.Expenses),
		TotalIncome:  r.TotalIncome,
		TotalExpense: r.TotalExpense,
		NetIncome:    r.NetIncome,
	}
}

// BalanceSheetResponse is the cumulative position at a date.
type BalanceSheetResponse struct {
	AsOf                   string               `json:"as_of"`
	Assets                 []ReportLineResponse `json:"assets"`
	Liabilities            []ReportLineResponse `json:"liabilities"`
	Equity                 []ReportLineResponse `json:"equity"`
	TotalAssets            decimal.Decimal      `json:"total_assets"`
	TotalLiabilities       decimal.Decimal      `json:"total_liabilities"`
	TotalEquity            decimal.Decimal      `json:"total_equity"`
	RetainedEarnings       decimal.Decimal      `json:"retained_earnings"`
	RetainedEarningsIsPlug bool                 `json:"retained_earnings_is_plug"`
}

// BalanceSheetFromUseCase converts a balance sheet to response.
func BalanceSheetFromUseCase(b *usecase.BalanceSheet) *BalanceSheetResponse {
	return &BalanceSheetResponse{
		AsOf:                   b.AsOf.Format(dateLayout),
		Assets:                 reportLines(b.Assets),
		Liabilities:            reportLines(b.Liabilities),
		Equity:                 reportLines(b.Equity),
		TotalAssets:            b.TotalAssets,
		TotalLiabilities:       b.TotalLiabilities,
		TotalEquity:            b.TotalEquity,
		RetainedEarnings:       b.RetainedEarnings,
		RetainedEarningsIsPlug: b.RetainedEarningsIsPlug,
	}
}

// DistributionResponse represents a yearly dividend distribution.
type DistributionResponse struct {
	ID                 string          `json:"id"`
	Year               int             `json:"year"`
	Status             string          `json:"status"`
	DividendRate       decimal.Decimal `json:"dividend_rate"`
	AverageReturnRate  decimal.Decimal `json:"average_return_rate"`
	TotalShareCapital  decimal.Decimal `json:"total_share_capital"`
	TotalInterestPaid  decimal.Decimal `json:"total_interest_paid"`
	TotalDividend      decimal.Decimal `json:"total_dividend"`
	TotalAverageReturn decimal.Decimal `json:"total_average_return"`
	TotalPayout        decimal.Decimal `json:"total_payout"`
	RecipientCount     int             `json:"recipient_count"`
	CalculatedBy       string          `json:"calculated_by"`
	CalculatedAt       time.Time       `json:"calculated_at"`
	DistributedBy      string          `json:"distributed_by,omitempty"`
	DistributedAt      *time.Time      `json:"distributed_at,omitempty"`
}

// DistributionFromDomain converts a distribution to response.
func DistributionFromDomain(d *domain.DividendDistribution) *DistributionResponse {
	return &DistributionResponse{
		ID:                 d.ID,
		Year:               d.Year,
		Status:             string(d.Status),
		DividendRate:       d.DividendRate,
		AverageReturnRate:  d.AverageReturnRate,
		TotalShareCapital:  d.TotalShareCapital,
		TotalInterestPaid:  d.TotalInterestPaid,
		TotalDividend:      d.TotalDividend,
		TotalAverageReturn: d.TotalAverageReturn,
		TotalPayout:        d.TotalPayout,
		RecipientCount:     d.RecipientCount,
		CalculatedBy:       d.CalculatedBy,
		CalculatedAt:       d.CalculatedAt,
		DistributedBy:      d.DistributedBy,
		DistributedAt:      d.DistributedAt,
	}
}

// RecipientResponse is one member's share of a distribution.
type RecipientResponse struct {
	MemberID            string          `json:"member_id"`
	SavingAccountID     string          `json:"saving_account_id"`
	ShareCapital        decimal.Decimal `json:"share_capital"`
	InterestPaid        decimal.Decimal `json:"interest_paid"`
	DividendAmount      decimal.Decimal `json:"dividend_amount"`
	AverageReturnAmount decimal.Decimal `json:"average_return_amount"`
	TotalPayout         decimal.Decimal `json:"total_payout"`
	PaidAt              *time.Time      `json:"paid_at,omitempty"`
}

// DividendDraftResponse is a calculated, unpaid distribution.
type DividendDraftResponse struct {
	Distribution *DistributionResponse `json:"distribution"`
	Recipients   []RecipientResponse   `json:"recipients"`
	Warnings     []string              `json:"warnings,omitempty"`
}

// DividendDraftFromUseCase converts a draft to response.
func DividendDraftFromUseCase(d *usecase.DividendDraft) *DividendDraftResponse {
	recipients := make([]RecipientResponse, len(d.Recipients))
	for i, r := range d.Recipients {
		recipients[i] = RecipientResponse{
			MemberID:            r.MemberID,
			SavingAccountID:     r.SavingAccountID,
			ShareCapital:        r.ShareCapital,
			InterestPaid:        r.InterestPaid,
			DividendAmount:      r.DividendAmount,
			AverageReturnAmount: r.AverageReturnAmount,
			TotalPayout:         r.TotalPayout,
			PaidAt:              r.PaidAt,
		}
	}
	return &DividendDraftResponse{
		Distribution: DistributionFromDomain(d.Distribution),
		Recipients:   recipients,
		Warnings:     d.Warnings,
	}
}

// DistributionResultResponse describes a completed payout.
type DistributionResultResponse struct {
	Distribution   *DistributionResponse `json:"distribution"`
	PaidRecipients int                   `json:"paid_recipients"`
	TotalPaid      decimal.Decimal       `json:"total_paid"`
	Warnings       []string              `json:"warnings,omitempty"`
}

// DistributionResultFromUseCase converts a payout result to response.
func DistributionResultFromUseCase(r *usecase.DistributionResult) *DistributionResultResponse {
	return &DistributionResultResponse{
		Distribution:   DistributionFromDomain(r.Distribution),
		PaidRecipients: r.PaidRecipients,
		TotalPaid:      r.TotalPaid,
		Warnings:       r.Warnings,
	}
}

// LedgerAccountResponse represents a chart-of-accounts entry.
type LedgerAccountResponse struct {
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	ParentCode *string   `json:"parent_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// LedgerAccountFromDomain converts a ledger account to response.
func LedgerAccountFromDomain(a *domain.LedgerAccount) *LedgerAccountResponse {
	return &LedgerAccountResponse{
		Code:       a.Code,
		Name:       a.Name,
		Category:   string(a.Category),
		ParentCode: a.ParentCode,
		CreatedAt:  a.CreatedAt,
	}
}

// LedgerAccountsFromDomain converts ledger accounts to responses.
func LedgerAccountsFromDomain(accounts []*domain.LedgerAccount) []*LedgerAccountResponse {
	result := make([]*LedgerAccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = LedgerAccountFromDomain(a)
	}
	return result
}

// JournalEntryResponse represents one posted journal line.
type JournalEntryResponse struct {
	ID              string          `json:"id"`
	PeriodKey       string          `json:"period_key"`
	AccountCode     string          `json:"account_code"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	TransactionDate string          `json:"transaction_date"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Description     string          `json:"description"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PostJournalResponse is the outcome of a manual posting.
type PostJournalResponse struct {
	Entries  []JournalEntryResponse `json:"entries"`
	Warnings []string               `json:"warnings,omitempty"`
}

// PostJournalFromUseCase converts a post result to response.
func PostJournalFromUseCase(r *usecase.PostResult) *PostJournalResponse {
	entries := make([]JournalEntryResponse, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = JournalEntryResponse{
			ID:              e.ID,
			PeriodKey:       e.PeriodKey,
			AccountCode:     e.AccountCode,
			Debit:           e.Debit,
			Credit:          e.Credit,
			TransactionDate: e.TransactionDate.Format(dateLayout),
			ReferenceType:   string(e.ReferenceType),
			ReferenceID:     e.ReferenceID,
			Description:     e.Description,
			CreatedBy:       e.CreatedBy,
			CreatedAt:       e.CreatedAt,
		}
	}
	return &PostJournalResponse{Entries: entries, Warnings: r.Warnings}
}

// AllocationResponse is the split of a payment.
type AllocationResponse struct {
	PenaltyPaid   decimal.Decimal `json:"penalty_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
}

// PaymentResponse is the outcome of applying a loan payment.
type PaymentResponse struct {
	PaymentID          string             `json:"payment_id"`
	LoanID             string             `json:"loan_id"`
	PaymentType        string             `json:"payment_type"`
	Amount             decimal.Decimal    `json:"amount"`
	PaymentDate        string             `json:"payment_date"`
	Allocation         AllocationResponse `json:"allocation"`
	LoanStatus         string             `json:"loan_status"`
	OutstandingBalance decimal.Decimal    `json:"outstanding_balance"`
	PenaltyBalance     decimal.Decimal    `json:"penalty_balance"`
	Warnings           []string           `json:"warnings,omitempty"`
}

// PaymentFromUseCase converts a payment result to response.
func PaymentFromUseCase(r *usecase.PaymentResult) *PaymentResponse {
	return &PaymentResponse{
		PaymentID:   r.Payment.ID,
		LoanID:      r.Payment.LoanID,
		PaymentType: string(r.Payment.PaymentType),
		Amount:      r.Payment.Amount,
		PaymentDate: r.Payment.PaymentDate.Format(dateLayout),
		Allocation: AllocationResponse{
			PenaltyPaid:   r.Allocation.PenaltyPaid,
			InterestPaid:  r.Allocation.InterestPaid,
			PrincipalPaid: r.Allocation.PrincipalPaid,
		},
		LoanStatus:         string(r.Loan.Status),
		OutstandingBalance: r.Loan.OutstandingBalance,
		PenaltyBalance:     r.Loan.PenaltyBalance,
		Warnings:           r.Warnings,
	}
}

// AuditLogResponse represents an audit trail entry.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:          l.ID,
			Actor:       l.Actor,
			Action:      l.Action,
			EntityType:  l.EntityType,
			EntityID:    l.EntityID,
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			Status:      l.Status,
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// EventResponse represents an outbox event.
type EventResponse struct {
	ID            string         `json:"id"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:            e.ID,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			EventType:     e.EventType,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
			PublishedAt:   e.PublishedAt,
		}
	}
	return result
}
