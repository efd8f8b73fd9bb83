package underwriting

import "github.com/denisok6893-rgb/property-underwriting/internal/domain"

const (
	baseAppreciation = 0.03
	minAppreciation  = 0.01
	maxAppreciation  = 0.07
)

// AppreciationRate picks an annual appreciation rate. High cap rates signal
// weaker long-run appreciation; the strategy nudges the baseline.
func AppreciationRate(capRate float64, s domain.Strategy) float64 {
	rate := baseAppreciation
	if capRate > 0.09 {
		rate -= 0.01
	}
	if capRate > 0.12 {
		rate -= 0.01
	}

	switch s {
	case domain.StrategyAppreciation:
		rate += 0.01
	case domain.StrategyShortTermRental:
		rate -= 0.005
	case domain.StrategyRental:
	}

	return clamp(rate, minAppreciation, maxAppreciation)
}
