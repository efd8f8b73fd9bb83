package underwriting

import (
	"math"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

const (
	rentToPriceRatio = 0.008 // the "0.8% rule"
	baselineBeds     = 3
	rentPerBedAdjust = 0.03
)

// EstimateRent derives a monthly rent from list price, adjusted by bedroom count
// relative to a 3-bed baseline. Unknown or zero beds leave the base rent unchanged.
func EstimateRent(p domain.RawProperty) float64 {
	price := finite(p.ListPrice)
	if price <= 0 {
		return 0
	}
	factor := 1.0
	if p.Beds != nil && *p.Beds > 0 {
		factor = 1 + float64(*p.Beds-baselineBeds)*rentPerBedAdjust
	}
	rent := math.Round(price * rentToPriceRatio * factor)
	if rent < 0 {
		return 0
	}
	return rent
}
