package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

func TestCloseSummaryFromUseCase_EncodesDecimalsAsStrings(t *testing.T) {
	summary := &usecase.CloseSummary{
		PeriodKey:          "2025-03",
		ProcessedLoans:     2,
		TotalLoanBalance:   decimal.RequireFromString("1234.50"),
		TotalSavingBalance: decimal.RequireFromString("99.99"),
		TrialBalance: &usecase.TrialBalance{
			PeriodKey: "2025-03",
			Debits:    decimal.NewFromInt(100),
			Credits:   decimal.NewFromInt(100),
			Variance:  decimal.Zero,
			Balanced:  true,
		},
		Anomalies: []domain.IntegrityAnomaly{{
			EntityType: "loan",
			EntityID:   "loan-1",
			Kind:       domain.AnomalyNegativeLoanBalance,
			Amount:     decimal.RequireFromString("-5"),
		}},
		ClosedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(CloseSummaryFromUseCase(summary))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)

	for _, want := range []string{
		`"total_loan_balance":"1234.5"`,
		`"total_saving_balance":"99.99"`,
		`"kind":"NEGATIVE_LOAN_BALANCE"`,
		`"amount":"-5"`,
		`"balanced":true`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestPeriodFromDomain(t *testing.T) {
	closedAt := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	resp := PeriodFromDomain(&domain.FiscalPeriod{
		ID:       "fp-1",
		Month:    3,
		Year:     2025,
		Status:   domain.PeriodStatusClosed,
		ClosedAt: &closedAt,
		ClosedBy: "alice",
	})

	if resp.PeriodKey != "2025-03" || resp.Status != "CLOSED" || resp.ClosedBy != "alice" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.ConfirmedAt != nil {
		t.Fatalf("confirmed_at should be empty for an unconfirmed period")
	}
}

func TestBalanceSheetFromUseCase(t *testing.T) {
	resp := BalanceSheetFromUseCase(&usecase.BalanceSheet{
		AsOf:                   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Assets:                 []usecase.ReportLine{{AccountCode: "1100", AccountName: "Cash", Amount: decimal.NewFromInt(10)}},
		TotalAssets:            decimal.NewFromInt(10),
		RetainedEarnings:       decimal.NewFromInt(10),
		RetainedEarningsIsPlug: true,
	})

	if resp.AsOf != "2025-03-31" {
		t.Fatalf("expected as_of 2025-03-31, got %s", resp.AsOf)
	}
	if len(resp.Assets) != 1 || resp.Assets[0].AccountCode != "1100" {
		t.Fatalf("unexpected assets %+v", resp.Assets)
	}
	if len(resp.Liabilities) != 0 || resp.Liabilities == nil {
		t.Fatalf("empty sections should encode as [] not null")
	}
	if !resp.RetainedEarningsIsPlug {
		t.Fatalf("expected plug flag to carry through")
	}
}
