package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/ikkim/agroshop-backend/pkg/payment/stripe"
)

var (
	ErrPaymentProcessor = errors.New("payment processor unavailable")
)

// PaymentFailedError means the processor answered but the intent cannot
// be used to pay this order. The order is left untouched.
type PaymentFailedError struct {
	IntentID string
	Detail   string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment failed for intent %s: %s", e.IntentID, e.Detail)
}

// PaymentProcessor is the subset of the processor client checkout needs.
type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, req stripe.CreateIntentRequest) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	PublishableKey() string
}

type PaymentService interface {
	CreateIntent(ctx context.Context, order *model.Order) (*stripe.PaymentIntent, error)
	VerifyIntent(ctx context.Context, order *model.Order, intentID string) (*stripe.PaymentIntent, error)
	PublishableKey() string
}

type paymentService struct {
	processor PaymentProcessor
	currency  string
}

func NewPaymentService(processor PaymentProcessor, currency string) PaymentService {
	return &paymentService{
		processor: processor,
		currency:  currency,
	}
}

func IntentIdempotencyKey(orderID uint) string {
	return fmt.Sprintf("order-%d-intent", orderID)
}

// CreateIntent sizes an intent to the order total in minor units. The
// idempotency key is derived from the order, so a retry for the same
// order gets the same intent back.
func (s *paymentService) CreateIntent(ctx context.Context, order *model.Order) (*stripe.PaymentIntent, error) {
	amount := pricing.ToMinorUnits(order.TotalAmount)

	intent, err := s.processor.CreatePaymentIntent(ctx, stripe.CreateIntentRequest{
		Amount:   amount,
		Currency: s.currency,
		Metadata: map[string]string{
			"order_id": strconv.FormatUint(uint64(order.ID), 10),
			"user_id":  strconv.FormatUint(uint64(order.UserID), 10),
		},
		IdempotencyKey: IntentIdempotencyKey(order.ID),
	})
	if err != nil {
		logger.Error("Failed to create payment intent", err, map[string]interface{}{
			"order_id": order.ID,
			"amount":   amount,
			"currency": s.currency,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentProcessor, err)
	}

	logger.Info("Payment intent created", map[string]interface{}{
		"order_id":          order.ID,
		"payment_intent_id": intent.ID,
		"amount":            amount,
	})
	return intent, nil
}

// VerifyIntent retrieves the intent and checks that it belongs to the
// order, covers its total and is authorized.
func (s *paymentService) VerifyIntent(ctx context.Context, order *model.Order, intentID string) (*stripe.PaymentIntent, error) {
	if order.PaymentIntentID != nil && *order.PaymentIntentID != intentID {
		return nil, &PaymentFailedError{IntentID: intentID, Detail: "Payment intent does not match order"}
	}

	intent, err := s.processor.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		if errors.Is(err, stripe.ErrNotFound) {
			return nil, &PaymentFailedError{IntentID: intentID, Detail: "Payment intent not found"}
		}
		logger.Error("Failed to retrieve payment intent", err, map[string]interface{}{
			"order_id":          order.ID,
			"payment_intent_id": intentID,
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentProcessor, err)
	}

	if order.PaymentIntentID == nil && intent.Metadata["order_id"] != strconv.FormatUint(uint64(order.ID), 10) {
		return nil, &PaymentFailedError{IntentID: intentID, Detail: "Payment intent does not match order"}
	}
	if intent.Amount != pricing.ToMinorUnits(order.TotalAmount) {
		logger.Warn("Payment intent amount does not match order total", map[string]interface{}{
			"order_id":      order.ID,
			"intent_amount": intent.Amount,
			"order_total":   order.TotalAmount.String(),
		})
		return nil, &PaymentFailedError{IntentID: intentID, Detail: "Payment intent does not match order"}
	}
	if !intent.Status.Authorized() {
		logger.Warn("Payment intent not authorized", map[string]interface{}{
			"order_id":          order.ID,
			"payment_intent_id": intentID,
			"status":            intent.Status,
		})
		return nil, &PaymentFailedError{IntentID: intentID, Detail: "Payment intent status: " + string(intent.Status)}
	}
	return intent, nil
}

func (s *paymentService) PublishableKey() string {
	return s.processor.PublishableKey()
}
