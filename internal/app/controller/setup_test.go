package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	"github.com/ikkim/agroshop-backend/internal/db"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/internal/idempotency"
	"github.com/ikkim/agroshop-backend/internal/middleware"
	"github.com/ikkim/agroshop-backend/internal/storage"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe/stripetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	processor *stripetest.Server
	replays   *idempotency.MemoryStore
	published *events.MemoryPublisher

	carts    service.CartService
	orders   service.OrderService
	payments service.PaymentService
	checkout service.CheckoutService

	user  *model.User
	other *model.User
}

// orderRepoWrapper lets a test swap in a repository that fails on purpose.
type orderRepoWrapper func(repository.OrderRepository) repository.OrderRepository

func setupControllerTest(t *testing.T, wrap ...orderRepoWrapper) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperrors.RegisterJSONFieldNames()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	processor := stripetest.NewServer()
	t.Cleanup(processor.Close)

	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	for _, w := range wrap {
		orderRepo = w(orderRepo)
	}
	productRepo := repository.NewProductRepository(testDB)

	productService := service.NewProductService(productRepo, true)
	cartService := service.NewCartService(cartRepo, productRepo, false)
	orderService := service.NewOrderService(testDB, orderRepo, cartRepo, productRepo, service.OrderOptions{
		ShippingCost: decimal.RequireFromString("10.00"),
	})
	paymentService := service.NewPaymentService(processor.Client(), "usd")
	published := events.NewMemoryPublisher()
	checkoutService := service.NewCheckoutService(orderService, paymentService, published)

	presenter := NewPresenter(storage.StaticResolver{BaseURL: "https://cdn.example.com"})
	replays := idempotency.NewMemoryStore(time.Hour)

	productCtrl := NewProductController(productService, presenter)
	cartCtrl := NewCartController(cartService, presenter)
	checkoutCtrl := NewCheckoutController(checkoutService, replays, presenter)
	orderCtrl := NewOrderController(orderService, presenter)
	adminCtrl := NewAdminController(orderService, presenter, 10*time.Minute)

	r := gin.New()
	r.GET("/products", productCtrl.GetProducts)
	r.GET("/products/featured", productCtrl.GetFeaturedProducts)
	r.GET("/products/:id", productCtrl.GetProductByID)
	r.GET("/products/:id/quote", productCtrl.GetQuote)

	authed := r.Group("/", testAuth)
	authed.GET("/cart", cartCtrl.GetCart)
	authed.POST("/cart/items", cartCtrl.AddItem)
	authed.PUT("/cart/items/:id", cartCtrl.UpdateItem)
	authed.DELETE("/cart/items/:id", cartCtrl.RemoveItem)
	authed.DELETE("/cart", cartCtrl.ClearCart)
	authed.POST("/checkout", checkoutCtrl.CreateCheckout)
	authed.POST("/checkout/confirm", checkoutCtrl.ConfirmPayment)
	authed.GET("/orders", orderCtrl.GetOrders)
	authed.GET("/orders/:id", orderCtrl.GetOrderByID)
	authed.GET("/admin/orders/unlinked", adminCtrl.GetUnlinkedOrders)

	env := &testEnv{
		db:        testDB,
		router:    r,
		processor: processor,
		replays:   replays,
		published: published,
		carts:     cartService,
		orders:    orderService,
		payments:  paymentService,
		checkout:  checkoutService,
	}

	env.user = &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleUser, IsActive: true}
	require.NoError(t, testDB.Create(env.user).Error)
	env.other = &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleUser, IsActive: true}
	require.NoError(t, testDB.Create(env.other).Error)

	return env
}

const testUserHeader = "X-Test-User"

// testAuth stands in for the JWT middleware: the user id comes from a header.
func testAuth(c *gin.Context) {
	var id uint
	if err := json.Unmarshal([]byte(c.GetHeader(testUserHeader)), &id); err == nil && id > 0 {
		c.Set(middleware.UserIDKey, id)
	}
	c.Next()
}

func (e *testEnv) product(t *testing.T, sku, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     "Product " + sku,
		SKU:      sku,
		Category: "seeds",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
		Image:    "products/" + sku + ".png",
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) do(method, path string, userID uint, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		raw, _ := json.Marshal(userID)
		req.Header.Set(testUserHeader, string(raw))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decode(t, w)
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return d
}
