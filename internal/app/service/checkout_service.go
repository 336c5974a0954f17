package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/pkg/logger"
)

var (
	ErrIntentLinkFailed = errors.New("failed to record payment intent on order")
)

type CheckoutResult struct {
	Order          *model.Order
	ClientSecret   string
	PublishableKey string
}

// CheckoutService runs the two-step checkout: order first, then intent.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, userID uint, address *model.ShippingAddress) (*CheckoutResult, error)
	ConfirmPayment(ctx context.Context, userID, orderID uint, intentID string, address *model.ShippingAddress) (*model.Order, error)
}

type checkoutService struct {
	orderService   OrderService
	paymentService PaymentService
	publisher      events.Publisher
}

func NewCheckoutService(orderService OrderService, paymentService PaymentService, publisher events.Publisher) CheckoutService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &checkoutService{
		orderService:   orderService,
		paymentService: paymentService,
		publisher:      publisher,
	}
}

func (s *checkoutService) CreateCheckout(ctx context.Context, userID uint, address *model.ShippingAddress) (*CheckoutResult, error) {
	order, err := s.orderService.CreateOrderFromCart(ctx, userID, address)
	if err != nil {
		return nil, err
	}

	intent, err := s.paymentService.CreateIntent(ctx, order)
	if err != nil {
		logger.Warn("Checkout left an unlinked order", map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	if err := s.orderService.LinkPaymentIntent(order.ID, intent.ID); err != nil {
		logger.Error("Payment intent created but not linked", err, map[string]interface{}{
			"user_id":           userID,
			"order_id":          order.ID,
			"payment_intent_id": intent.ID,
		})
		return nil, fmt.Errorf("%w: %v", ErrIntentLinkFailed, err)
	}
	order.PaymentIntentID = &intent.ID

	s.publish(ctx, events.OrderCreated, order)

	logger.Info("Checkout created", map[string]interface{}{
		"user_id":           userID,
		"order_id":          order.ID,
		"payment_intent_id": intent.ID,
		"total_amount":      order.TotalAmount.String(),
	})
	return &CheckoutResult{
		Order:          order,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.paymentService.PublishableKey(),
	}, nil
}

// ConfirmPayment is safe to repeat: an already paid order comes back
// unchanged with no further writes or events.
func (s *checkoutService) ConfirmPayment(ctx context.Context, userID, orderID uint, intentID string, address *model.ShippingAddress) (*model.Order, error) {
	order, err := s.orderService.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		logger.Info("Order already paid, returning current state", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return order, nil
	}

	if _, err := s.paymentService.VerifyIntent(ctx, order, intentID); err != nil {
		return nil, err
	}

	transitioned, err := s.orderService.CompletePayment(ctx, userID, orderID, address)
	if err != nil {
		return nil, err
	}

	order, err = s.orderService.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.publish(ctx, events.OrderPaid, order)
	}
	return order, nil
}

func (s *checkoutService) publish(ctx context.Context, t events.Type, order *model.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, order)); err != nil {
		logger.Warn("Failed to publish order event", map[string]interface{}{
			"type":     t,
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}
