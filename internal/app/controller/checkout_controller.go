package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	apperrors "github.com/ikkim/agroshop-backend/internal/errors"
	"github.com/ikkim/agroshop-backend/internal/idempotency"
	"github.com/ikkim/agroshop-backend/internal/middleware"
	"github.com/ikkim/agroshop-backend/pkg/redis"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type CheckoutController struct {
	checkoutService service.CheckoutService
	replays         idempotency.Store
	presenter       *Presenter
}

func NewCheckoutController(checkoutService service.CheckoutService, replays idempotency.Store, presenter *Presenter) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		replays:         replays,
		presenter:       presenter,
	}
}

type CheckoutRequest struct {
	ShippingAddress *model.ShippingAddress `json:"shipping_address"`
}

type ConfirmPaymentRequest struct {
	OrderID         uint                   `json:"order_id" binding:"required,gt=0"`
	PaymentIntentID string                 `json:"payment_intent_id" binding:"required,max=255"`
	ShippingAddress *model.ShippingAddress `json:"shipping_address"`
}

type CheckoutResponse struct {
	Data           OrderResponse `json:"data"`
	ClientSecret   string        `json:"client_secret"`
	PublishableKey string        `json:"publishable_key"`
}

// CreateCheckout turns the active cart into an order and a payment intent
// POST /api/v1/checkout
func (ctrl *CheckoutController) CreateCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	replayKey := ""
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" && ctrl.replays != nil {
		replayKey = redis.CheckoutReplayKey(userID, key)
		cached, err := ctrl.replays.Begin(c.Request.Context(), replayKey)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			apperrors.Conflict(c, apperrors.CheckoutInProgress, "A checkout with this idempotency key is already in progress")
			return
		case err != nil:
			// replay store down: carry on without replay protection
			log.Warn("Idempotency store unavailable", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			replayKey = ""
		case cached != nil:
			log.Info("Replaying checkout response", map[string]interface{}{
				"user_id": userID,
			})
			c.Data(http.StatusCreated, "application/json; charset=utf-8", cached)
			return
		}
	}

	result, err := ctrl.checkoutService.CreateCheckout(c.Request.Context(), userID, req.ShippingAddress)
	if err != nil {
		ctrl.abortReplay(c, replayKey)
		ctrl.respondCheckoutError(c, userID, err)
		return
	}

	body, err := json.Marshal(CheckoutResponse{
		Data:           ctrl.presenter.Order(c.Request.Context(), result.Order),
		ClientSecret:   result.ClientSecret,
		PublishableKey: result.PublishableKey,
	})
	if err != nil {
		ctrl.abortReplay(c, replayKey)
		log.Error("Failed to encode checkout response", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	if replayKey != "" {
		if err := ctrl.replays.Complete(c.Request.Context(), replayKey, body); err != nil {
			log.Warn("Failed to store checkout response for replay", map[string]interface{}{
				"user_id":  userID,
				"order_id": result.Order.ID,
				"error":    err.Error(),
			})
		}
	}

	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// ConfirmPayment verifies the intent with the processor and marks the order paid
// POST /api/v1/checkout/confirm
//
// A rejected intent answers 400 {"error":"PAYMENT_FAILED","message":"Payment failed",
// "detail":"Payment intent status: <status>"}. The status text sits in detail
// because error always carries the code in this API.
func (ctrl *CheckoutController) ConfirmPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.checkoutService.ConfirmPayment(c.Request.Context(), userID, req.OrderID, req.PaymentIntentID, req.ShippingAddress)
	if err != nil {
		var failed *service.PaymentFailedError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.As(err, &failed):
			log.Warn("Payment confirmation rejected", map[string]interface{}{
				"user_id":           userID,
				"order_id":          req.OrderID,
				"payment_intent_id": req.PaymentIntentID,
				"detail":            failed.Detail,
			})
			apperrors.RespondWithDetail(c, http.StatusBadRequest, apperrors.PaymentFailed, "Payment failed", failed.Detail)
		case errors.Is(err, service.ErrPaymentProcessor):
			apperrors.BadGateway(c, apperrors.PaymentProcessorError, "Payment processor unavailable. Please try again later")
		default:
			log.Error("Failed to confirm payment", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": req.OrderID,
			})
			info := apperrors.ParseError(err, "confirm order payment")
			apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ctrl.presenter.Order(c.Request.Context(), order)})
}

func (ctrl *CheckoutController) respondCheckoutError(c *gin.Context, userID uint, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
	case respondInsufficientStock(c, err):
	case errors.Is(err, service.ErrPaymentProcessor):
		apperrors.BadGateway(c, apperrors.PaymentProcessorError, "Payment processor unavailable. Please try again later")
	case errors.Is(err, service.ErrIntentLinkFailed):
		apperrors.InternalError(c, "Checkout could not be completed. Please contact support")
	default:
		log.Error("Failed to create checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		info := apperrors.ParseError(err, "create order")
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
	}
}

func (ctrl *CheckoutController) abortReplay(c *gin.Context, key string) {
	if key == "" {
		return
	}
	if err := ctrl.replays.Abort(c.Request.Context(), key); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to release idempotency key", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
