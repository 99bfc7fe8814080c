package domain

import (
	"fmt"
	"time"
)

// Event types
const (
	EventTypePeriodClosed        = "period.closed"
	EventTypePeriodConfirmed     = "period.confirmed"
	EventTypeDividendCalculated  = "dividend.calculated"
	EventTypeDividendDistributed = "dividend.distributed"
	EventTypeLoanDefaulted       = "loan.defaulted"
	EventTypeLoanPaymentApplied  = "loan.payment_applied"
)

// Aggregate types
const (
	AggregateTypePeriod   = "fiscal_period"
	AggregateTypeDividend = "dividend_distribution"
	AggregateTypeLoan     = "loan"
)

// ValidateAggregateType rejects aggregate types no event is ever written for.
func ValidateAggregateType(aggregateType string) error {
	switch aggregateType {
	case AggregateTypePeriod, AggregateTypeDividend, AggregateTypeLoan:
		return nil
	}
	return fmt.Errorf("%w: unknown aggregate type %q", ErrValidation, aggregateType)
}

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// PeriodClosedEvent payload
type PeriodClosedEvent struct {
	PeriodKey          string `json:"period_key"`
	ClosedBy           string `json:"closed_by"`
	ProcessedLoans     int    `json:"processed_loans"`
	ProcessedSavings   int    `json:"processed_savings"`
	TotalLoanBalance   string `json:"total_loan_balance"`
	TotalSavingBalance string `json:"total_saving_balance"`
	Anomalies          int    `json:"anomalies"`
}

// PeriodConfirmedEvent payload
type PeriodConfirmedEvent struct {
	PeriodKey         string `json:"period_key"`
	ConfirmedBy       string `json:"confirmed_by"`
	VerifiedSnapshots int64  `json:"verified_snapshots"`
}

// DividendEvent payload, used for both calculation and distribution.
type DividendEvent struct {
	DistributionID string `json:"distribution_id"`
	Year           int    `json:"year"`
	Status         string `json:"status"`
	RecipientCount int    `json:"recipient_count"`
	TotalPayout    string `json:"total_payout"`
	Actor          string `json:"actor"`
}

// LoanDefaultedEvent payload
type LoanDefaultedEvent struct {
	LoanID             string `json:"loan_id"`
	MemberID           string `json:"member_id"`
	OutstandingBalance string `json:"outstanding_balance"`
	MaturityDate       string `json:"maturity_date"`
}

// LoanPaymentAppliedEvent payload
type LoanPaymentAppliedEvent struct {
	LoanID        string `json:"loan_id"`
	PaymentID     string `json:"payment_id"`
	PenaltyPaid   string `json:"penalty_paid"`
	InterestPaid  string `json:"interest_paid"`
	PrincipalPaid string `json:"principal_paid"`
	Outstanding   string `json:"outstanding"`
}

// NewOutboxEvent builds an unpublished event from a typed payload.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload any, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       MarshalState(payload),
		CreatedAt:     at,
	}
}

// Validate checks the fields the outbox relies on for routing.
func (e *OutboxEvent) Validate() error {
	if e.ID == "" || e.AggregateID == "" || e.EventType == "" {
		return fmt.Errorf("%w: outbox event needs id, aggregate id and event type", ErrValidation)
	}
	return ValidateAggregateType(e.AggregateType)
}
