package controller

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe/stripetest"
	"github.com/ikkim/agroshop-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fillCart(t *testing.T, env *testEnv) {
	t.Helper()
	p := env.product(t, "A", "45.00", 100)
	_, err := env.carts.AddItem(env.user.ID, p.ID, 2)
	require.NoError(t, err)
}

func TestCheckoutController_CreateCheckout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode(t, w)
		d := body["data"].(map[string]interface{})
		assert.Equal(t, 100.0, d["total_amount"])
		assert.Equal(t, "pending", d["status"])
		assert.Equal(t, "pending", d["payment_status"])
		assert.Equal(t, stripetest.PublishableKey, body["publishable_key"])
		assert.Equal(t, d["payment_intent_id"].(string)+"_secret_test", body["client_secret"])
		assert.Equal(t, 1, env.published.Count(events.OrderCreated))
	})

	t.Run("With shipping address", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, map[string]interface{}{
			"shipping_address": map[string]string{
				"street": "1 Farm Rd", "city": "Fresno", "state": "CA", "zip": "93650", "country": "US",
			},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		addr := data(t, w)["shipping_address"].(map[string]interface{})
		assert.Equal(t, "Fresno", addr["city"])
	})

	t.Run("Incomplete shipping address", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, map[string]interface{}{
			"shipping_address": map[string]string{"street": "1 Farm Rd"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["errors"], "shipping_address.city")
	})

	t.Run("Empty cart", func(t *testing.T) {
		env := setupControllerTest(t)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "CART_EMPTY", body["error"])
		assert.Equal(t, "Cart is empty", body["message"])
	})

	t.Run("Processor unavailable", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)
		env.processor.FailNext(1)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil)
		require.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "PAYMENT_PROCESSOR_ERROR", decode(t, w)["error"])
	})
}

func TestCheckoutController_IdempotencyKey(t *testing.T) {
	t.Run("Replays first response", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		first := env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		require.Equal(t, http.StatusCreated, first.Code)
		second := env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		require.Equal(t, http.StatusCreated, second.Code)

		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, 1, env.processor.CreateCalls())

		var count int64
		require.NoError(t, env.db.Model(&model.Order{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Keys are scoped per user", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(http.MethodPost, "/checkout", env.other.ID, nil, IdempotencyKeyHeader, "abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Concurrent request conflicts", func(t *testing.T) {
		env := setupControllerTest(t)
		fillCart(t, env)

		_, err := env.replays.Begin(context.Background(), redis.CheckoutReplayKey(env.user.ID, "abc"))
		require.NoError(t, err)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CHECKOUT_IN_PROGRESS", decode(t, w)["error"])
	})

	t.Run("Failure releases key", func(t *testing.T) {
		env := setupControllerTest(t)

		w := env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		require.Equal(t, http.StatusBadRequest, w.Code)

		fillCart(t, env)
		w = env.do(http.MethodPost, "/checkout", env.user.ID, nil, IdempotencyKeyHeader, "abc")
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestCheckoutController_ConfirmPayment(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, uint, string) {
		env := setupControllerTest(t)
		fillCart(t, env)
		result, err := env.checkout.CreateCheckout(context.Background(), env.user.ID, nil)
		require.NoError(t, err)
		return env, result.Order.ID, *result.Order.PaymentIntentID
	}

	t.Run("Success", func(t *testing.T) {
		env, orderID, intentID := setup(t)
		env.processor.SetStatus(intentID, stripe.StatusSucceeded)

		w := env.do(http.MethodPost, "/checkout/confirm", env.user.ID, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		d := data(t, w)
		assert.Equal(t, "completed", d["payment_status"])
		assert.Equal(t, "pending", d["status"])

		w = env.do(http.MethodPost, "/checkout/confirm", env.user.ID, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, env.published.Count(events.OrderPaid))
	})

	t.Run("Intent not authorized", func(t *testing.T) {
		env, orderID, intentID := setup(t)

		w := env.do(http.MethodPost, "/checkout/confirm", env.user.ID, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "PAYMENT_FAILED", body["error"])
		assert.Equal(t, "Payment failed", body["message"])
		assert.Equal(t, "Payment intent status: requires_payment_method", body["detail"])
	})

	t.Run("Foreign order", func(t *testing.T) {
		env, orderID, intentID := setup(t)

		w := env.do(http.MethodPost, "/checkout/confirm", env.other.ID, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Order not found", decode(t, w)["message"])
	})

	t.Run("Missing intent id", func(t *testing.T) {
		env, orderID, _ := setup(t)

		w := env.do(http.MethodPost, "/checkout/confirm", env.user.ID, map[string]interface{}{
			"order_id": orderID,
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["errors"], "payment_intent_id")
	})

	t.Run("Processor unavailable", func(t *testing.T) {
		env, orderID, intentID := setup(t)
		env.processor.FailNext(1)

		w := env.do(http.MethodPost, "/checkout/confirm", env.user.ID, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

// unlinkableOrderRepo loses the payment intent write.
type unlinkableOrderRepo struct {
	repository.OrderRepository
}

func (r unlinkableOrderRepo) WithTx(tx *gorm.DB) repository.OrderRepository {
	return unlinkableOrderRepo{r.OrderRepository.WithTx(tx)}
}

func (unlinkableOrderRepo) LinkPaymentIntent(uint, string) error {
	return errors.New("connection reset by peer")
}

func TestCheckoutController_CreateCheckoutLinkFailure(t *testing.T) {
	env := setupControllerTest(t, func(r repository.OrderRepository) repository.OrderRepository {
		return unlinkableOrderRepo{r}
	})
	fillCart(t, env)

	w := env.do(http.MethodPost, "/checkout", env.user.ID, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", decode(t, w)["error"])
	assert.Equal(t, 1, env.processor.CreateCalls())
	assert.Zero(t, env.published.Count(events.OrderCreated))

	// the order stays behind without an intent and shows up in the report
	w = env.do(http.MethodGet, "/admin/orders/unlinked?older_than=0s", env.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, float64(1), body["count"])
	reported := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, reported["payment_intent_id"])

	orders, err := env.orders.ListUnlinked(0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]

	// recreating the intent for the same order reuses the processor's intent
	first, err := env.payments.CreateIntent(context.Background(), &order)
	require.NoError(t, err)
	second, err := env.payments.CreateIntent(context.Background(), &order)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 3, env.processor.CreateCalls())

	stored, ok := env.processor.Intent(first.ID)
	require.True(t, ok)
	assert.Equal(t, itoa(order.ID), stored.Metadata["order_id"])
	_, ok = env.processor.Intent("pi_test_2")
	assert.False(t, ok)
}
