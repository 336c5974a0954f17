package pricing

import (
	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// LineItem is the minimal view of a cart line needed for totals.
type LineItem struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotal      decimal.Decimal
	ItemCount     int
	TotalQuantity int
}

// CalculateTotals sums the lines and rounds the subtotal half-up to cents.
func CalculateTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	totalQty := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalQty += item.Quantity
	}

	return Totals{
		Subtotal:      subtotal.Round(2),
		ItemCount:     len(items),
		TotalQuantity: totalQty,
	}
}

// LinesFromCart maps persisted cart items to line items.
func LinesFromCart(items []model.CartItem) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineItem{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return lines
}
