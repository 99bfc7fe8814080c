package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type DividendDistribution struct {
	ID                 string             `json:"id"`
	Year               int32              `json:"year"`
	DividendRate       pgtype.Numeric     `json:"dividend_rate"`
	AverageReturnRate  pgtype.Numeric     `json:"average_return_rate"`
	Status             string             `json:"status"`
	TotalShareCapital  pgtype.Numeric     `json:"total_share_capital"`
	TotalInterestPaid  pgtype.Numeric     `json:"total_interest_paid"`
	TotalDividend      pgtype.Numeric     `json:"total_dividend"`
	TotalAverageReturn pgtype.Numeric     `json:"total_average_return"`
	TotalPayout        pgtype.Numeric     `json:"total_payout"`
	RecipientCount     int32              `json:"recipient_count"`
	CalculatedBy       string             `json:"calculated_by"`
	CalculatedAt       pgtype.Timestamptz `json:"calculated_at"`
	DistributedBy      pgtype.Text        `json:"distributed_by"`
	DistributedAt      pgtype.Timestamptz `json:"distributed_at"`
}

type DividendRecipient struct {
	ID                  string             `json:"id"`
	DistributionID      string             `json:"distribution_id"`
	MemberID            string             `json:"member_id"`
	SavingAccountID     pgtype.Text        `json:"saving_account_id"`
	ShareCapital        pgtype.Numeric     `json:"share_capital"`
	InterestPaid        pgtype.Numeric     `json:"interest_paid"`
	DividendAmount      pgtype.Numeric     `json:"dividend_amount"`
	AverageReturnAmount pgtype.Numeric     `json:"average_return_amount"`
	TotalPayout         pgtype.Numeric     `json:"total_payout"`
	PaidAt              pgtype.Timestamptz `json:"paid_at"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
}

type FiscalPeriod struct {
	ID          string             `json:"id"`
	Month       int32              `json:"month"`
	Year        int32              `json:"year"`
	Status      string             `json:"status"`
	ClosedAt    pgtype.Timestamptz `json:"closed_at"`
	ClosedBy    pgtype.Text        `json:"closed_by"`
	ConfirmedAt pgtype.Timestamptz `json:"confirmed_at"`
	ConfirmedBy pgtype.Text        `json:"confirmed_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type JournalEntry struct {
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

type LedgerAccount struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	ParentCode pgtype.Text        `json:"parent_code"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
}

type Loan struct {
	ID                 string             `json:"id"`
	MemberID           string             `json:"member_id"`
	LoanNumber         string             `json:"loan_number"`
	PrincipalAmount    pgtype.Numeric     `json:"principal_amount"`
	InterestRate       pgtype.Numeric     `json:"interest_rate"`
	TermMonths         int32              `json:"term_months"`
	OutstandingBalance pgtype.Numeric     `json:"outstanding_balance"`
	TotalPaidPrincipal pgtype.Numeric     `json:"total_paid_principal"`
	TotalPaidInterest  pgtype.Numeric     `json:"total_paid_interest"`
	PenaltyBalance     pgtype.Numeric     `json:"penalty_balance"`
	Status             string             `json:"status"`
	DisbursedAt        pgtype.Timestamptz `json:"disbursed_at"`
	MaturityDate       pgtype.Timestamptz `json:"maturity_date"`
	LastPaymentAt      pgtype.Timestamptz `json:"last_payment_at"`
	Version            int64              `json:"version"`
	CreatedAt          pgtype.Timestamptz `json:"created_at"`
	UpdatedAt          pgtype.Timestamptz `json:"updated_at"`
}

type LoanBalanceSnapshot struct {
	ID                 string             `json:"id"`
	LoanID             string             `json:"loan_id"`
	BalanceDate        pgtype.Date        `json:"balance_date"`
	OpeningPrincipal   pgtype.Numeric     `json:"opening_principal"`
	ClosingPrincipal   pgtype.Numeric     `json:"closing_principal"`
	PrincipalPaid      pgtype.Numeric     `json:"principal_paid"`
	InterestPaid       pgtype.Numeric     `json:"interest_paid"`
	PenaltyPaid        pgtype.Numeric     `json:"penalty_paid"`
	InterestAccrued    pgtype.Numeric     `json:"interest_accrued"`
	OutstandingBalance pgtype.Numeric     `json:"outstanding_balance"`
	Verified           bool               `json:"verified"`
	CreatedAt          pgtype.Timestamptz `json:"created_at"`
}

type LoanPayment struct {
	ID            string             `json:"id"`
	LoanID        string             `json:"loan_id"`
	MemberID      string             `json:"member_id"`
	PaymentType   string             `json:"payment_type"`
	Status        string             `json:"status"`
	Amount        pgtype.Numeric     `json:"amount"`
	PrincipalPaid pgtype.Numeric     `json:"principal_paid"`
	InterestPaid  pgtype.Numeric     `json:"interest_paid"`
	PenaltyPaid   pgtype.Numeric     `json:"penalty_paid"`
	PaymentDate   pgtype.Timestamptz `json:"payment_date"`
	ApprovedBy    string             `json:"approved_by"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type Member struct {
	ID           string             `json:"id"`
	MemberNumber string             `json:"member_number"`
	Name         string             `json:"name"`
	Active       bool               `json:"active"`
	JoinedAt     pgtype.Timestamptz `json:"joined_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type SavingAccount struct {
	ID               string             `json:"id"`
	MemberID         string             `json:"member_id"`
	AccountNumber    string             `json:"account_number"`
	Balance          pgtype.Numeric     `json:"balance"`
	AvailableBalance pgtype.Numeric     `json:"available_balance"`
	ShareCapital     pgtype.Numeric     `json:"share_capital"`
	InterestRate     pgtype.Numeric     `json:"interest_rate"`
	Active           bool               `json:"active"`
	Frozen           bool               `json:"frozen"`
	Version          int64              `json:"version"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type SavingBalanceSnapshot struct {
	ID              string             `json:"id"`
	SavingAccountID string             `json:"saving_account_id"`
	BalanceDate     pgtype.Date        `json:"balance_date"`
	OpeningBalance  pgtype.Numeric     `json:"opening_balance"`
	ClosingBalance  pgtype.Numeric     `json:"closing_balance"`
	Deposits        pgtype.Numeric     `json:"deposits"`
	Withdrawals     pgtype.Numeric     `json:"withdrawals"`
	InterestEarned  pgtype.Numeric     `json:"interest_earned"`
	Fees            pgtype.Numeric     `json:"fees"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}
