package repository

import (
	"testing"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func createProduct(t *testing.T, testDB *gorm.DB, sku string, price string, stock int, active, featured bool) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:       "Product " + sku,
		SKU:        sku,
		Category:   "fertilizer",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		IsActive:   active,
		IsFeatured: featured,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return testDB, NewProductRepository(testDB)
}

func TestProductRepository_FindAll(t *testing.T) {
	testDB, repo := setupProductTest(t)

	createProduct(t, testDB, "A", "10.00", 5, true, true)
	createProduct(t, testDB, "B", "20.00", 5, false, true)
	createProduct(t, testDB, "C", "30.00", 5, true, false)

	all, err := repo.FindAll(ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	featured, err := repo.FindAll(ProductFilter{FeaturedOnly: true, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "A", featured[0].SKU)
}

func TestProductRepository_FindByIDWithTiers(t *testing.T) {
	testDB, repo := setupProductTest(t)
	product := createProduct(t, testDB, "A", "45.00", 100, true, false)

	require.NoError(t, repo.ReplaceTiers(product.ID, []model.PricingTier{
		{MinQty: 10, Price: decimal.RequireFromString("40.00"), Label: "Wholesale"},
		{MinQty: 1, MaxQty: intPtr(9), Price: decimal.RequireFromString("45.00"), Label: "Retail"},
	}))

	found, err := repo.FindByIDWithTiers(product.ID)
	require.NoError(t, err)
	require.Len(t, found.PricingTiers, 2)
	assert.Equal(t, 1, found.PricingTiers[0].MinQty)
	assert.Equal(t, 10, found.PricingTiers[1].MinQty)

	_, err = repo.FindByIDWithTiers(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_ReplaceTiers(t *testing.T) {
	testDB, repo := setupProductTest(t)
	product := createProduct(t, testDB, "A", "45.00", 100, true, false)

	require.NoError(t, repo.ReplaceTiers(product.ID, []model.PricingTier{
		{MinQty: 1, Price: decimal.RequireFromString("45.00")},
	}))
	require.NoError(t, repo.ReplaceTiers(product.ID, nil))

	var count int64
	testDB.Model(&model.PricingTier{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
}

func TestProductRepository_FindByIDsForUpdate(t *testing.T) {
	testDB, repo := setupProductTest(t)
	a := createProduct(t, testDB, "A", "10.00", 5, true, false)
	b := createProduct(t, testDB, "B", "20.00", 7, true, false)

	var locked map[uint]model.Product
	err := testDB.Transaction(func(tx *gorm.DB) error {
		var err error
		locked, err = repo.WithTx(tx).FindByIDsForUpdate([]uint{a.ID, b.ID, 9999})
		return err
	})
	require.NoError(t, err)
	assert.Len(t, locked, 2)
	assert.Equal(t, 7, locked[b.ID].Stock)
}

func TestProductRepository_CreateUpdateBySKU(t *testing.T) {
	_, repo := setupProductTest(t)

	product := &model.Product{SKU: "SEED-1", Name: "Seed", Price: decimal.RequireFromString("12.50"), Stock: 3}
	require.NoError(t, repo.Create(product))

	found, err := repo.FindBySKU("SEED-1")
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	found.IsActive = true
	found.Stock = 9
	require.NoError(t, repo.Update(found))

	reloaded, err := repo.FindByID(found.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsActive)
	assert.Equal(t, 9, reloaded.Stock)
	assert.True(t, reloaded.Price.Equal(decimal.RequireFromString("12.5")))
}
