package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTier     = errors.New("invalid pricing tier")
	ErrOverlappingTier = errors.New("pricing tiers cannot overlap")
)

var maxDiscount = decimal.NewFromInt(100)

// ValidateTiers checks a product's tier set before it is written.
// Tiers are compared in min_qty order, an unbounded tier must come last
// and each tier must start above the previous tier's max_qty.
func ValidateTiers(tiers []model.PricingTier) error {
	for i, t := range tiers {
		if t.MinQty < 1 {
			return fmt.Errorf("%w: tier %q min_qty must be at least 1", ErrInvalidTier, tierName(t, i))
		}
		if t.MaxQty != nil && *t.MaxQty < t.MinQty {
			return fmt.Errorf("%w: tier %q max_qty is below min_qty", ErrInvalidTier, tierName(t, i))
		}
		if t.Price.IsNegative() {
			return fmt.Errorf("%w: tier %q price must not be negative", ErrInvalidTier, tierName(t, i))
		}
		if t.Discount.IsNegative() || t.Discount.GreaterThan(maxDiscount) {
			return fmt.Errorf("%w: tier %q discount must be between 0 and 100", ErrInvalidTier, tierName(t, i))
		}
	}

	if len(tiers) < 2 {
		return nil
	}

	sorted := make([]model.PricingTier, len(tiers))
	copy(sorted, tiers)
	SortTiers(sorted)

	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]
		if current.MaxQty == nil {
			return fmt.Errorf("%w: tier %q has no maximum quantity but later tiers exist",
				ErrOverlappingTier, tierName(current, i))
		}
		if next.MinQty <= *current.MaxQty {
			return fmt.Errorf("%w: tier %q overlaps the previous tier",
				ErrOverlappingTier, tierName(next, i+1))
		}
	}
	return nil
}

// SortTiers orders tiers by min_qty in place.
func SortTiers(tiers []model.PricingTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQty < tiers[j].MinQty
	})
}

func tierName(t model.PricingTier, idx int) string {
	if t.Label != "" {
		return t.Label
	}
	return fmt.Sprintf("#%d", idx+1)
}
