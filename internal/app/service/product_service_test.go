package service

import (
	"testing"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_ListFeatured(t *testing.T) {
	f := setupFixture(t)

	featured := f.product(t, "A", "10.00", 5)
	require.NoError(t, f.db.Model(featured).Update("is_featured", true).Error)
	hidden := f.product(t, "B", "10.00", 5)
	require.NoError(t, f.db.Model(hidden).Updates(map[string]interface{}{"is_featured": true, "is_active": false}).Error)
	f.product(t, "C", "10.00", 5)

	products, err := f.products.ListFeatured()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, featured.ID, products[0].ID)

	all, err := f.products.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductService_GetProduct(t *testing.T) {
	f := setupFixture(t)

	_, err := f.products.GetProduct(999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	p := f.product(t, "A", "45.00", 100)
	require.NoError(t, f.productRepo.ReplaceTiers(p.ID, []model.PricingTier{
		{MinQty: 10, Price: dec("40.00")},
		{MinQty: 1, MaxQty: intPtr(9), Price: dec("45.00")},
	}))

	found, err := f.products.GetProduct(p.ID)
	require.NoError(t, err)
	require.Len(t, found.PricingTiers, 2)
	assert.Equal(t, 1, found.PricingTiers[0].MinQty)
}

func TestProductService_Quote(t *testing.T) {
	tests := []struct {
		name      string
		applyTier bool
		quantity  int
		wantPrice string
		wantTier  bool
		available bool
	}{
		{name: "Base price when tiers are display only", applyTier: false, quantity: 12, wantPrice: "45.00", wantTier: true, available: true},
		{name: "Tier price when tiers apply", applyTier: true, quantity: 12, wantPrice: "40.00", wantTier: true, available: true},
		{name: "No tier below first tier", applyTier: true, quantity: 3, wantPrice: "45.00", wantTier: false, available: true},
		{name: "Not available above stock", applyTier: true, quantity: 101, wantPrice: "40.00", wantTier: true, available: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t, fixtureOptions{applyTierPricing: tt.applyTier})
			p := f.product(t, "A", "45.00", 100)
			require.NoError(t, f.productRepo.ReplaceTiers(p.ID, []model.PricingTier{
				{MinQty: 10, Price: dec("40.00"), Label: "Wholesale"},
			}))

			quote, err := f.products.Quote(p.ID, tt.quantity)
			require.NoError(t, err)
			assert.True(t, quote.UnitPrice.Equal(dec(tt.wantPrice)), quote.UnitPrice.String())
			assert.Equal(t, tt.wantTier, quote.Tier != nil)
			assert.Equal(t, tt.available, quote.Available)
		})
	}
}

func TestProductService_QuoteRejectsZeroQuantity(t *testing.T) {
	f := setupFixture(t)
	p := f.product(t, "A", "45.00", 100)

	_, err := f.products.Quote(p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
