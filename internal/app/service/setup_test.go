package service

import (
	"testing"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/db"
	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe/stripetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository

	products  ProductService
	carts     CartService
	orders    OrderService
	payments  PaymentService
	checkout  CheckoutService
	processor *stripetest.Server
	published *events.MemoryPublisher

	user  *model.User
	other *model.User
}

type fixtureOptions struct {
	applyTierPricing bool
	revalidateStock  bool
}

func setupFixture(t *testing.T, opts ...fixtureOptions) *fixture {
	t.Helper()

	var o fixtureOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	processor := stripetest.NewServer()
	t.Cleanup(processor.Close)

	f := &fixture{
		db:          testDB,
		cartRepo:    repository.NewCartRepository(testDB),
		orderRepo:   repository.NewOrderRepository(testDB),
		productRepo: repository.NewProductRepository(testDB),
		processor:   processor,
		published:   events.NewMemoryPublisher(),
	}

	f.products = NewProductService(f.productRepo, o.applyTierPricing)
	f.carts = NewCartService(f.cartRepo, f.productRepo, o.applyTierPricing)
	f.orders = NewOrderService(testDB, f.orderRepo, f.cartRepo, f.productRepo, OrderOptions{
		ShippingCost:    decimal.RequireFromString("10.00"),
		RevalidateStock: o.revalidateStock,
	})
	f.payments = NewPaymentService(processor.Client(), "usd")
	f.checkout = NewCheckoutService(f.orders, f.payments, f.published)

	f.user = &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleUser, IsActive: true}
	require.NoError(t, testDB.Create(f.user).Error)
	f.other = &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleUser, IsActive: true}
	require.NoError(t, testDB.Create(f.other).Error)

	return f
}

func (f *fixture) product(t *testing.T, sku, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     "Product " + sku,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
		Image:    "products/" + sku + ".png",
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }
