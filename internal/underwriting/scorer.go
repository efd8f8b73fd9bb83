package underwriting

import (
	"fmt"
	"math"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// Reference ranges for the sub-scores. Total appreciation is over the whole
// horizon, not annualized.
const (
	capRateMin      = 0.03
	capRateMax      = 0.12
	cashOnCashMin   = 0.04
	cashOnCashMax   = 0.20
	appreciationMin = 0.10
	appreciationMax = 0.80

	lowRentThreshold = 500
	lowRentPenalty   = 0.9
)

// StrategyWeights are the coefficients of the three sub-scores. They sum to 1.
type StrategyWeights struct {
	CapRate      float64 `json:"cap_rate"`
	CashOnCash   float64 `json:"cash_on_cash"`
	Appreciation float64 `json:"appreciation"`
}

// WeightsFor returns the weighting table of a strategy.
func WeightsFor(s domain.Strategy) (StrategyWeights, error) {
	switch s {
	case domain.StrategyRental:
		return StrategyWeights{CapRate: 0.5, CashOnCash: 0.4, Appreciation: 0.1}, nil
	case domain.StrategyAppreciation:
		return StrategyWeights{CapRate: 0.2, CashOnCash: 0.2, Appreciation: 0.6}, nil
	case domain.StrategyShortTermRental:
		return StrategyWeights{CapRate: 0.3, CashOnCash: 0.5, Appreciation: 0.2}, nil
	}
	return StrategyWeights{}, fmt.Errorf("%w: %v", domain.ErrUnknownStrategy, s)
}

// ScoreMetrics combines normalized sub-scores into a 0..100 integer score.
// Properties renting under 500/month are marked down by 10%; such rents usually
// mean bad input data.
func ScoreMetrics(listPrice float64, m domain.InvestmentMetrics, s domain.Strategy) (int, domain.ScoreBreakdown, error) {
	w, err := WeightsFor(s)
	if err != nil {
		return 0, domain.ScoreBreakdown{}, err
	}

	growth := 0.0
	if price := positive(listPrice); price > 0 {
		growth = finite(m.ProjectedValueYearN/price - 1)
	}

	b := domain.ScoreBreakdown{
		CapRateScore:       Normalize(m.CapRate, capRateMin, capRateMax),
		CashOnCashScore:    Normalize(m.CashOnCash, cashOnCashMin, cashOnCashMax),
		AppreciationScore:  Normalize(growth, appreciationMin, appreciationMax),
		CapRateWeight:      w.CapRate,
		CashOnCashWeight:   w.CashOnCash,
		AppreciationWeight: w.Appreciation,
	}

	total := w.CapRate*b.CapRateScore + w.CashOnCash*b.CashOnCashScore + w.Appreciation*b.AppreciationScore
	if m.EstimatedRent < lowRentThreshold {
		total *= lowRentPenalty
		b.LowRentPenalty = true
	}

	return int(math.Round(clamp01(total) * 100)), b, nil
}

// ScoreProperty underwrites and scores a single property. The only error is an
// invalid scoring context, reported before any computation.
func ScoreProperty(p domain.RawProperty, ctx domain.ScoringContext) (domain.ScoredProperty, error) {
	if err := ctx.Validate(); err != nil {
		return domain.ScoredProperty{}, fmt.Errorf("score property %q: %w", p.ID, err)
	}

	m := ComputeMetrics(p, ctx.Assumptions, ctx.HorizonYears, ctx.Strategy)
	score, breakdown, err := ScoreMetrics(p.ListPrice, m, ctx.Strategy)
	if err != nil {
		return domain.ScoredProperty{}, fmt.Errorf("score property %q: %w", p.ID, err)
	}

	return domain.ScoredProperty{
		Property:     p,
		Metrics:      m,
		Score:        score,
		Strategy:     ctx.Strategy,
		HorizonYears: ctx.HorizonYears,
		Breakdown:    breakdown,
	}, nil
}
