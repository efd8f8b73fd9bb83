package underwriting

import (
	"math"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// ComputeMetrics underwrites a property. Every division is guarded: degenerate
// inputs (missing price, zero equity) produce zeros, never NaN or Inf.
func ComputeMetrics(p domain.RawProperty, a domain.InvestmentAssumptions, horizonYears int, s domain.Strategy) domain.InvestmentMetrics {
	price := positive(p.ListPrice)

	rent := EstimateRent(p)
	expenses := Expenses(p, rent, a)
	annualExpenses := finite(expenses.Total())
	noi := finite(rent*12 - annualExpenses)

	capRate := 0.0
	if price > 0 {
		capRate = finite(noi / price)
	}

	fin := Amortize(price, a.DownPayment, a.LoanRate, horizonYears)
	cashFlow := finite(noi - fin.InterestAnnual)

	cashOnCash := 0.0
	if fin.Equity > 0 {
		cashOnCash = finite(cashFlow / fin.Equity)
	}

	appreciation := AppreciationRate(capRate, s)
	projected := finite(p.ListPrice)
	if horizonYears > 0 && price > 0 {
		projected = math.Round(finite(price * math.Pow(1+appreciation, float64(horizonYears))))
	}

	return domain.InvestmentMetrics{
		EstimatedRent:       rent,
		AnnualExpenses:      annualExpenses,
		Expenses:            expenses,
		AnnualNOI:           noi,
		CapRate:             capRate,
		CashOnCash:          cashOnCash,
		AppreciationRate:    appreciation,
		ProjectedValueYearN: projected,
		AnnualCashFlow:      cashFlow,
		PrincipalPaydown:    fin.PrincipalPaidByHorizon,
	}
}
