package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// TrialBalanceRow is one account line of a trial balance report.
type TrialBalanceRow struct {
	AccountCode string
	AccountName string
	Debits      decimal.Decimal
	Credits     decimal.Decimal
}

// TrialBalanceReport lists per-account totals for a period.
type TrialBalanceReport struct {
	PeriodKey    string
	Rows         []TrialBalanceRow
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Variance     decimal.Decimal
	Balanced     bool
}

// ReportLine is an account balance in its normal direction.
type ReportLine struct {
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
}

// IncomeExpenseReport covers [Start, End], both days inclusive.
type IncomeExpenseReport struct {
	Start        time.Time
	End          time.Time
	Income       []ReportLine
	Expenses     []ReportLine
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetIncome    decimal.Decimal
}

// BalanceSheet is the cumulative position at AsOf.
//
// RetainedEarnings is derived as assets - liabilities - other equity rather
// than rolled forward from closed income, so the sheet always balances.
// RetainedEarningsIsPlug makes that explicit to readers.
type BalanceSheet struct {
	AsOf                   time.Time
	Assets                 []ReportLine
	Liabilities            []ReportLine
	Equity                 []ReportLine
	TotalAssets            decimal.Decimal
	TotalLiabilities       decimal.Decimal
	TotalEquity            decimal.Decimal
	RetainedEarnings       decimal.Decimal
	RetainedEarningsIsPlug bool
}

// ReportUseCase builds read-only financial views from the journal.
type ReportUseCase struct {
	journalRepo  JournalRepository
	trialBalance *TrialBalanceUseCase
	logger       zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(journalRepo JournalRepository, trialBalance *TrialBalanceUseCase, logger zerolog.Logger) *ReportUseCase {
	return &ReportUseCase{
		journalRepo:  journalRepo,
		trialBalance: trialBalance,
		logger:       logger,
	}
}

// GetTrialBalanceReport returns per-account totals for periodKey.
func (uc *ReportUseCase) GetTrialBalanceReport(ctx context.Context, periodKey string) (*TrialBalanceReport, error) {
	period, err := domain.ParsePeriodKey(periodKey)
	if err != nil {
		return nil, err
	}

	totals, err := uc.journalRepo.SumByAccountForPeriod(ctx, period.Key())
	if err != nil {
		return nil, err
	}
	sortTotals(totals)

	report := &TrialBalanceReport{
		PeriodKey:    period.Key(),
		Rows:         make([]TrialBalanceRow, 0, len(totals)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, t := range totals {
		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountCode: t.AccountCode,
			AccountName: t.AccountName,
			Debits:      t.Debits,
			Credits:     t.Credits,
		})
		report.TotalDebits = report.TotalDebits.Add(t.Debits)
		report.TotalCredits = report.TotalCredits.Add(t.Credits)
	}

	report.Variance = report.TotalDebits.Sub(report.TotalCredits)
	report.Balanced = report.Variance.Abs().LessThanOrEqual(uc.trialBalance.tolerance)

	return report, nil
}

// GenerateIncomeExpenseReport sums income (4x) and expense (5x) accounts
// between start and end.
func (uc *ReportUseCase) GenerateIncomeExpenseReport(ctx context.Context, start, end time.Time) (*IncomeExpenseReport, error) {
	start, end = startOfDay(start), startOfDay(end)
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	totals, err := uc.journalRepo.SumByAccountBetween(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	sortTotals(totals)

	report := &IncomeExpenseReport{
		Start:        start,
		End:          end,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	for _, t := range totals {
		category, ok := uc.category(t.AccountCode)
		if !ok {
			continue
		}

		line := ReportLine{AccountCode: t.AccountCode, AccountName: t.AccountName, Amount: t.Net(category)}
		switch category {
		case domain.CategoryIncome:
			report.Income = append(report.Income, line)
			report.TotalIncome = report.TotalIncome.Add(line.Amount)
		case domain.CategoryExpense:
			report.Expenses = append(report.Expenses, line)
			report.TotalExpense = report.TotalExpense.Add(line.Amount)
		}
	}

	report.NetIncome = report.TotalIncome.Sub(report.TotalExpense)

	return report, nil
}

// GenerateBalanceSheet sums balance-sheet accounts from the beginning of the
// journal up to and including asOf.
func (uc *ReportUseCase) GenerateBalanceSheet(ctx context.Context, asOf time.Time) (*BalanceSheet, error) {
	asOf = startOfDay(asOf)

	totals, err := uc.journalRepo.SumByAccountUntil(ctx, asOf.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	sortTotals(totals)

	sheet := &BalanceSheet{
		AsOf:                   asOf,
		TotalAssets:            decimal.Zero,
		TotalLiabilities:       decimal.Zero,
		TotalEquity:            decimal.Zero,
		RetainedEarningsIsPlug: true,
	}

	for _, t := range totals {
		category, ok := uc.category(t.AccountCode)
		if !ok {
			continue
		}

		line := ReportLine{AccountCode: t.AccountCode, AccountName: t.AccountName, Amount: t.Net(category)}
		switch category {
		case domain.CategoryAsset:
			sheet.Assets = append(sheet.Assets, line)
			sheet.TotalAssets = sheet.TotalAssets.Add(line.Amount)
		case domain.CategoryLiability:
			sheet.Liabilities = append(sheet.Liabilities, line)
			sheet.TotalLiabilities = sheet.TotalLiabilities.Add(line.Amount)
		case domain.CategoryEquity:
			sheet.Equity = append(sheet.Equity, line)
			sheet.TotalEquity = sheet.TotalEquity.Add(line.Amount)
		}
	}

	sheet.RetainedEarnings = sheet.TotalAssets.Sub(sheet.TotalLiabilities).Sub(sheet.TotalEquity)

	return sheet, nil
}

func (uc *ReportUseCase) category(code string) (domain.AccountCategory, bool) {
	category, err := domain.CategoryFromCode(code)
	if err != nil {
		uc.logger.Warn().Err(err).Str("account_code", code).Msg("skipping account with unknown category")
		return "", false
	}
	return category, true
}

func sortTotals(totals []domain.AccountTotals) {
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].AccountCode < totals[j].AccountCode
	})
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
