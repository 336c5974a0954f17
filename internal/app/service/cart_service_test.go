package service

import (
	"testing"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetCartCreatesActiveCart(t *testing.T) {
	f := setupFixture(t)

	view, err := f.carts.GetCart(f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CartID)
	assert.Equal(t, model.CartStatusActive, view.Status)
	assert.Empty(t, view.Items)
	assert.True(t, view.Totals.Subtotal.IsZero())

	again, err := f.carts.GetCart(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, *view.CartID, *again.CartID)
}

func TestCartService_AddItem(t *testing.T) {
	t.Run("Adds line with current price", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "45.00", 100)

		view, err := f.carts.AddItem(f.user.ID, p.ID, 2)
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, 2, view.Items[0].Quantity)
		assert.True(t, view.Items[0].UnitPrice.Equal(dec("45.00")))
		assert.Equal(t, "Product A", view.Items[0].Product.Name)
		assert.True(t, view.Totals.Subtotal.Equal(dec("90.00")))
		assert.Equal(t, 1, view.Totals.ItemCount)
	})

	t.Run("Adding same product replaces quantity", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "45.00", 100)

		_, err := f.carts.AddItem(f.user.ID, p.ID, 2)
		require.NoError(t, err)
		view, err := f.carts.AddItem(f.user.ID, p.ID, 5)
		require.NoError(t, err)

		require.Len(t, view.Items, 1)
		assert.Equal(t, 5, view.Items[0].Quantity)
		assert.Equal(t, 5, view.Totals.TotalQuantity)
	})

	t.Run("Re-add refreshes captured price", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "45.00", 100)

		_, err := f.carts.AddItem(f.user.ID, p.ID, 1)
		require.NoError(t, err)
		require.NoError(t, f.db.Model(p).Update("price", dec("50.00")).Error)

		view, err := f.carts.AddItem(f.user.ID, p.ID, 1)
		require.NoError(t, err)
		assert.True(t, view.Items[0].UnitPrice.Equal(dec("50.00")))
	})

	t.Run("Stock exactly equal is allowed", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "1.00", 3)

		_, err := f.carts.AddItem(f.user.ID, p.ID, 3)
		assert.NoError(t, err)
	})

	t.Run("Insufficient stock", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "1.00", 3)

		_, err := f.carts.AddItem(f.user.ID, p.ID, 4)
		var stockErr *pricing.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 3, stockErr.Available)
		assert.Equal(t, 4, stockErr.Requested)
	})

	t.Run("Unknown product", func(t *testing.T) {
		f := setupFixture(t)

		_, err := f.carts.AddItem(f.user.ID, 999, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "1.00", 3)

		_, err := f.carts.AddItem(f.user.ID, p.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCartService_AddItemWithTierPricing(t *testing.T) {
	f := setupFixture(t, fixtureOptions{applyTierPricing: true})
	p := f.product(t, "A", "45.00", 100)
	require.NoError(t, f.productRepo.ReplaceTiers(p.ID, []model.PricingTier{
		{MinQty: 10, Price: dec("40.00")},
	}))

	view, err := f.carts.AddItem(f.user.ID, p.ID, 10)
	require.NoError(t, err)
	assert.True(t, view.Items[0].UnitPrice.Equal(dec("40.00")))
	assert.True(t, view.Totals.Subtotal.Equal(dec("400.00")))

	view, err = f.carts.UpdateItem(f.user.ID, view.Items[0].ID, 2)
	require.NoError(t, err)
	assert.True(t, view.Items[0].UnitPrice.Equal(dec("45.00")))
}

func TestCartService_UpdateItem(t *testing.T) {
	f := setupFixture(t)
	p := f.product(t, "A", "45.00", 10)

	view, err := f.carts.AddItem(f.user.ID, p.ID, 2)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	t.Run("Replaces quantity", func(t *testing.T) {
		view, err := f.carts.UpdateItem(f.user.ID, itemID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, view.Items[0].Quantity)
		assert.True(t, view.Totals.Subtotal.Equal(dec("180.00")))
	})

	t.Run("Insufficient stock", func(t *testing.T) {
		_, err := f.carts.UpdateItem(f.user.ID, itemID, 11)
		var stockErr *pricing.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	})

	t.Run("Missing item", func(t *testing.T) {
		_, err := f.carts.UpdateItem(f.user.ID, 999, 1)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})

	t.Run("Other user's item", func(t *testing.T) {
		_, err := f.carts.UpdateItem(f.other.ID, itemID, 1)
		assert.ErrorIs(t, err, ErrCartItemForbidden)
	})
}

func TestCartService_RemoveItem(t *testing.T) {
	f := setupFixture(t)
	a := f.product(t, "A", "45.00", 10)
	b := f.product(t, "B", "5.00", 10)

	_, err := f.carts.AddItem(f.user.ID, a.ID, 1)
	require.NoError(t, err)
	view, err := f.carts.AddItem(f.user.ID, b.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	_, err = f.carts.RemoveItem(f.other.ID, view.Items[0].ID)
	assert.ErrorIs(t, err, ErrCartItemForbidden)

	view, err = f.carts.RemoveItem(f.user.ID, view.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, b.ID, view.Items[0].ProductID)
	assert.True(t, view.Totals.Subtotal.Equal(dec("5.00")))
}

func TestCartService_Clear(t *testing.T) {
	t.Run("Without cart returns empty view", func(t *testing.T) {
		f := setupFixture(t)

		view, err := f.carts.Clear(f.user.ID)
		require.NoError(t, err)
		assert.Nil(t, view.CartID)
		assert.Empty(t, view.Items)

		var count int64
		require.NoError(t, f.db.Model(&model.Cart{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("Empties active cart", func(t *testing.T) {
		f := setupFixture(t)
		p := f.product(t, "A", "45.00", 10)
		_, err := f.carts.AddItem(f.user.ID, p.ID, 3)
		require.NoError(t, err)

		view, err := f.carts.Clear(f.user.ID)
		require.NoError(t, err)
		require.NotNil(t, view.CartID)
		assert.Empty(t, view.Items)
		assert.Equal(t, model.CartStatusActive, view.Status)

		var count int64
		require.NoError(t, f.db.Model(&model.CartItem{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}
