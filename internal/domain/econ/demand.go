package econ

import (
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// DemandCurve returns the unrounded demand of a segment at a price:
//
//	units = base_demand(m) * (price / ref_price(m)) ^ elasticity(m)
//
// Prices below one cent are treated as one cent so the curve stays finite.
func DemandCurve(seg *Segment, priceCents int64, m shared.Month) float64 {
	c := seg.ConditionsAt(m)
	if c.BaseDemand <= 0 || c.RefPriceCents <= 0 {
		return 0
	}

	price := float64(priceCents)
	if price < 1 {
		price = 1
	}

	return c.BaseDemand * math.Pow(price/c.RefPriceCents, c.Elasticity)
}

// Demand returns whole units demanded at a price in month m
func Demand(seg *Segment, priceCents int64, m shared.Month) int64 {
	return floorUnits(DemandCurve(seg, priceCents, m))
}

// RefPrice returns the segment reference price for month m in cents
func RefPrice(seg *Segment, m shared.Month) int64 {
	return int64(math.Round(seg.ConditionsAt(m).RefPriceCents))
}

// Attractiveness scores how appealing a price is against the segment reference price.
// perfBoost is the fractional uplift from released products (0 = none).
func Attractiveness(refCents, priceCents int64, beta, perfBoost float64) float64 {
	price := math.Max(float64(priceCents), 1)
	ref := math.Max(float64(refCents), 1)
	a := math.Pow(ref/price, beta) * (1 + math.Max(perfBoost, 0))
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return a
}

// MinPrice is the lowest price that keeps the markup over unit cost at minMarginFrac
func MinPrice(unitCostCents int64, minMarginFrac float64) int64 {
	return int64(math.Ceil(float64(unitCostCents) * (1 + minMarginFrac)))
}

// RespectsMinMargin reports whether a price keeps the required markup
func RespectsMinMargin(priceCents, unitCostCents int64, minMarginFrac float64) bool {
	return priceCents >= MinPrice(unitCostCents, minMarginFrac)
}

// floorUnits rounds a unit count down, absorbing float noise just below an integer
func floorUnits(x float64) int64 {
	if x <= 0 || math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return math.MaxInt64 / 4
	}
	return int64(math.Floor(x + 1e-9))
}
