package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places every persisted amount carries.
const MoneyPlaces = 2

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// RoundMoney rounds to two places, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// DailyRate converts an annual percentage rate to a simple daily rate.
func DailyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(hundred).Div(daysPerYear)
}

// AccrueInterest computes simple, non-compounding interest on balance for the
// given number of days. The balance is treated as flat across the window.
func AccrueInterest(balance, annualPercent decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 || !balance.IsPositive() || !annualPercent.IsPositive() {
		return decimal.Zero
	}

	accrued := balance.Mul(DailyRate(annualPercent)).Mul(decimal.NewFromInt(int64(days)))

	return RoundMoney(accrued)
}

// PercentOf returns amount * percent / 100 rounded to money precision.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(percent).Div(hundred))
}
