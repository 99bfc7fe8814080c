package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// ParseDate accepts either a calendar date (YYYY-MM-DD) or an RFC 3339
// timestamp and returns it in UTC. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", domain.ErrValidation, s)
	}
	return t.UTC(), nil
}

// ParseDecimal parses a decimal string. An empty string yields zero.
func ParseDecimal(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a decimal", domain.ErrValidation, field, s)
	}
	return d, nil
}

// CreateLedgerAccountRequest adds an account to the chart.
type CreateLedgerAccountRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	ParentCode *string `json:"parent_code,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLedgerAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Code:       strings.TrimSpace(r.Code),
		Name:       strings.TrimSpace(r.Name),
		ParentCode: r.ParentCode,
	}
}

// JournalLineRequest is one debit or credit line.
type JournalLineRequest struct {
	AccountCode string `json:"account_code"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

// PostJournalRequest posts a balanced manual journal.
type PostJournalRequest struct {
	TransactionDate string               `json:"transaction_date"`
	ReferenceType   string               `json:"reference_type,omitempty"`
	ReferenceID     string               `json:"reference_id,omitempty"`
	Description     string               `json:"description"`
	Lines           []JournalLineRequest `json:"lines"`
}

// ToUseCaseInput converts to use case input.
func (r *PostJournalRequest) ToUseCaseInput() (usecase.PostEntriesInput, error) {
	date, err := ParseDate(r.TransactionDate)
	if err != nil {
		return usecase.PostEntriesInput{}, err
	}

	lines := make([]usecase.JournalLine, 0, len(r.Lines))
	for i, l := range r.Lines {
		debit, err := ParseDecimal(fmt.Sprintf("lines[%d].debit", i), l.Debit)
		if err != nil {
			return usecase.PostEntriesInput{}, err
		}
		credit, err := ParseDecimal(fmt.Sprintf("lines[%d].credit", i), l.Credit)
		if err != nil {
			return usecase.PostEntriesInput{}, err
		}
		lines = append(lines, usecase.JournalLine{
			AccountCode: strings.TrimSpace(l.AccountCode),
			Debit:       debit,
			Credit:      credit,
		})
	}

	return usecase.PostEntriesInput{
		TransactionDate: date,
		ReferenceType:   domain.ReferenceType(strings.ToUpper(r.ReferenceType)),
		ReferenceID:     r.ReferenceID,
		Description:     r.Description,
		Lines:           lines,
	}, nil
}

// CalculateDividendsRequest carries the yearly rates, in percent.
type CalculateDividendsRequest struct {
	DividendRate      string `json:"dividend_rate"`
	AverageReturnRate string `json:"average_return_rate"`
}

// Rates parses both rates.
func (r *CalculateDividendsRequest) Rates() (dividendRate, averageReturnRate decimal.Decimal, err error) {
	dividendRate, err = ParseDecimal("dividend_rate", r.DividendRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	averageReturnRate, err = ParseDecimal("average_return_rate", r.AverageReturnRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return dividendRate, averageReturnRate, nil
}

// ApplyPaymentRequest records a member's loan payment.
type ApplyPaymentRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date,omitempty"`
}

// Parse returns the amount and payment date.
func (r *ApplyPaymentRequest) Parse() (decimal.Decimal, time.Time, error) {
	amount, err := ParseDecimal("amount", r.Amount)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	date, err := ParseDate(r.PaymentDate)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return amount, date, nil
}
