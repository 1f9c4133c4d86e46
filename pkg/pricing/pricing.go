package pricing

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Bundle is a discount offer that becomes available once the cart holds
// at least QuantityRequired items.
type Bundle struct {
	ID               string
	Name             string
	DiscountPercent  float64
	QuantityRequired int
}

// ClampPercent forces a discount percentage into [0, 100]. NaN maps to 0.
func ClampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ComputeDiscountedTotal returns round(sum * (100 - pct) / 100) in minor units.
// Rounding is half away from zero and happens once, on the final amount.
func ComputeDiscountedTotal(undiscountedSum int64, discountPercent float64) int64 {
	pct := decimal.NewFromFloat(ClampPercent(discountPercent))
	factor := hundred.Sub(pct)

	total := decimal.NewFromInt(undiscountedSum).Mul(factor).Div(hundred)
	return total.Round(0).IntPart()
}

// DiscountAmount is the part of the subtotal removed by the bundle.
func DiscountAmount(undiscountedSum int64, discountPercent float64) int64 {
	return undiscountedSum - ComputeDiscountedTotal(undiscountedSum, discountPercent)
}

// EligibleBundles returns the bundles whose QuantityRequired is met by itemCount,
// best offer first. Offers with equal discounts keep their input order.
func EligibleBundles(bundles []Bundle, itemCount int) []Bundle {
	eligible := make([]Bundle, 0, len(bundles))
	for _, b := range bundles {
		if b.QuantityRequired <= itemCount {
			eligible = append(eligible, b)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].DiscountPercent > eligible[j].DiscountPercent
	})
	return eligible
}

// BestBundle returns the single offer to recommend for itemCount, if any.
func BestBundle(bundles []Bundle, itemCount int) (Bundle, bool) {
	eligible := EligibleBundles(bundles, itemCount)
	if len(eligible) == 0 {
		return Bundle{}, false
	}
	return eligible[0], true
}

// FormatMinorUnits renders an amount of cents for display, e.g. "95.98 EUR".
func FormatMinorUnits(amount int64, currency string) string {
	s := decimal.New(amount, -2).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
