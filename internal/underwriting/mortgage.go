package underwriting

import (
	"math"

	"github.com/shopspring/decimal"
)

// LoanTermMonths is the fixed amortization term used for principal paydown.
const LoanTermMonths = 360

// Financing is the financing side of an underwriting.
type Financing struct {
	Equity                 float64 `json:"equity"`
	Loan                   float64 `json:"loan"`
	InterestAnnual         float64 `json:"interest_annual"`
	PrincipalPaidByHorizon float64 `json:"principal_paid_by_horizon"`
}

// Amortize splits the price into equity and loan and derives the carrying cost
// and principal paydown over the horizon.
//
// InterestAnnual is a flat loan × rate approximation, not the first-year interest
// of the amortizing schedule. PrincipalPaidByHorizon, on the other hand, follows
// the fixed-term schedule. Both are kept as-is: cash-on-cash is quoted on the flat
// figure.
func Amortize(listPrice, downPayment, loanRate float64, horizonYears int) Financing {
	price := positive(listPrice)
	equity := finite(price * downPayment)
	loan := price - equity

	f := Financing{
		Equity:         equity,
		Loan:           loan,
		InterestAnnual: finite(loan * loanRate),
	}
	f.PrincipalPaidByHorizon = principalPaid(loan, loanRate/12, horizonYears*12)
	return f
}

func principalPaid(loan, monthlyRate float64, elapsedMonths int) float64 {
	if loan <= 0 || !(monthlyRate > 0) || math.IsInf(monthlyRate, 0) {
		return 0
	}
	remaining := RemainingBalance(loan, monthlyRate, LoanTermMonths, elapsedMonths)
	return math.Max(0, math.Round(finite(loan-remaining)))
}

// RemainingBalance returns the outstanding balance of a fixed-payment loan after
// elapsedMonths payments. elapsedMonths is clamped to [0, termMonths].
func RemainingBalance(loan, monthlyRate float64, termMonths, elapsedMonths int) float64 {
	if loan <= 0 || termMonths <= 0 {
		return 0
	}
	if elapsedMonths < 0 {
		elapsedMonths = 0
	}
	if elapsedMonths > termMonths {
		elapsedMonths = termMonths
	}
	if !(monthlyRate > 0) {
		return loan * float64(termMonths-elapsedMonths) / float64(termMonths)
	}
	full := math.Pow(1+monthlyRate, float64(termMonths))
	done := math.Pow(1+monthlyRate, float64(elapsedMonths))
	return finite(loan * (full - done) / (full - 1))
}

// AmortizationEntry is one month of a fixed-payment schedule.
type AmortizationEntry struct {
	Period           int             `json:"period"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AmortizationSchedule computes the month-by-month schedule of a fixed-payment loan:
//
//	r       = annualRate / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// Money is rounded to cents; the final period absorbs rounding so the balance
// reaches exactly zero. Returns nil for a non-positive loan or term.
func AmortizationSchedule(loan decimal.Decimal, annualRate float64, termMonths int) []AmortizationEntry {
	if termMonths <= 0 || loan.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	monthlyRate := annualRate / 12
	var payment decimal.Decimal
	if !(monthlyRate > 0) {
		monthlyRate = 0
		payment = loan.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	} else {
		factor := math.Pow(1+monthlyRate, float64(termMonths))
		payment = decimal.NewFromFloat(loan.InexactFloat64() * monthlyRate * factor / (factor - 1)).Round(2)
	}

	rate := decimal.NewFromFloat(monthlyRate)
	remaining := loan
	schedule := make([]AmortizationEntry, 0, termMonths)

	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(rate).Round(2)
		principal := payment.Sub(interest)
		if period == termMonths || principal.GreaterThan(remaining) {
			principal = remaining
		}
		remaining = remaining.Sub(principal)

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			Payment:          principal.Add(interest),
			Principal:        principal,
			Interest:         interest,
			RemainingBalance: remaining,
		})
		if remaining.IsZero() {
			break
		}
	}
	return schedule
}
