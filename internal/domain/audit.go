package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for a ledger mutation
type AuditLog struct {
	ID          string
	Actor       string // Who performed the action
	Action      string // What action (period.close, dividend.distribute, ...)
	EntityType  string // Type of entity (fiscal_period, dividend_distribution, ...)
	EntityID    string // ID of the entity
	BeforeState JSON   // State before the action
	AfterState  JSON   // State after the action
	Status      string // success, failure
	CreatedAt   time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionPeriodClose   AuditAction = "period.close"
	AuditActionPeriodConfirm AuditAction = "period.confirm"

	AuditActionDividendCalculate  AuditAction = "dividend.calculate"
	AuditActionDividendDistribute AuditAction = "dividend.distribute"

	AuditActionJournalPost   AuditAction = "journal.post"
	AuditActionAccountCreate AuditAction = "ledger_account.create"
	AuditActionAccountDelete AuditAction = "ledger_account.delete"

	AuditActionLoanPayment     AuditAction = "loan.payment_apply"
	AuditActionLoanMarkOverdue AuditAction = "loan.mark_overdue"
)

// Audited entity types
const (
	EntityFiscalPeriod         = "fiscal_period"
	EntityDividendDistribution = "dividend_distribution"
	EntityJournal              = "journal"
	EntityLedgerAccount        = "ledger_account"
	EntityLoan                 = "loan"
	EntitySavingAccount        = "saving_account"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}
