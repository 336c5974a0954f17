// Package pricing holds the side-effect free rules used by the cart and
// checkout flows: stock availability, volume tier lookup and cart totals.
package pricing

import (
	"fmt"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a product cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ValidateAvailability fails only when stock is strictly below the
// requested quantity. Nothing is reserved.
func ValidateAvailability(product *model.Product, qty int) error {
	if product.Stock < qty {
		return &InsufficientStockError{
			ProductID: product.ID,
			Requested: qty,
			Available: product.Stock,
		}
	}
	return nil
}

// ResolveTier returns the tier covering qty, if any.
func ResolveTier(tiers []model.PricingTier, qty int) (*model.PricingTier, bool) {
	for i := range tiers {
		if tiers[i].Contains(qty) {
			return &tiers[i], true
		}
	}
	return nil, false
}

// UnitPrice returns the price a cart line should capture. Tiers only
// override the base price when applyTiers is set.
func UnitPrice(product *model.Product, qty int, applyTiers bool) decimal.Decimal {
	if applyTiers {
		if tier, ok := ResolveTier(product.PricingTiers, qty); ok {
			return tier.Price
		}
	}
	return product.Price
}

// ToMinorUnits converts a 2-decimal amount to integer cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
