package underwriting

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// Summary describes a batch of scored properties for side-by-side comparison.
type Summary struct {
	Count          int     `json:"count"`
	MeanScore      float64 `json:"mean_score"`
	MedianScore    float64 `json:"median_score"`
	StdDevScore    float64 `json:"stddev_score"`
	MeanCapRate    float64 `json:"mean_cap_rate"`
	MeanCashOnCash float64 `json:"mean_cash_on_cash"`
}

// Summarize aggregates a batch. An empty batch yields a zero Summary.
func Summarize(items []domain.ScoredProperty) Summary {
	if len(items) == 0 {
		return Summary{}
	}

	scores := make([]float64, len(items))
	caps := make([]float64, len(items))
	cocs := make([]float64, len(items))
	for i, sp := range items {
		scores[i] = float64(sp.Score)
		caps[i] = sp.Metrics.CapRate
		cocs[i] = sp.Metrics.CashOnCash
	}

	s := Summary{
		Count:          len(items),
		MeanScore:      stat.Mean(scores, nil),
		MeanCapRate:    stat.Mean(caps, nil),
		MeanCashOnCash: stat.Mean(cocs, nil),
	}
	if len(scores) > 1 {
		s.StdDevScore = stat.StdDev(scores, nil)
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	s.MedianScore = median(sorted)
	return s
}

// median of sorted data; an even count averages the two middle values, which
// stat.Quantile with the Empirical kind does not.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
