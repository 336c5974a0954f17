package service

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/repository"
	"github.com/ikkim/agroshop-backend/internal/pricing"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// OrderOptions are the checkout business rules loaded from config.
type OrderOptions struct {
	ShippingCost    decimal.Decimal
	RevalidateStock bool
}

type OrderService interface {
	CreateOrderFromCart(ctx context.Context, userID uint, address *model.ShippingAddress) (*model.Order, error)
	LinkPaymentIntent(orderID uint, intentID string) error
	CompletePayment(ctx context.Context, userID, orderID uint, address *model.ShippingAddress) (bool, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	ListOrders(userID uint) ([]model.Order, error)
	ListUnlinked(olderThan time.Duration) ([]model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	opts        OrderOptions
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	opts OrderOptions,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		opts:        opts,
	}
}

// CreateOrderFromCart snapshots the active cart into a pending
// order. The cart itself is left alone until payment is confirmed.
func (s *orderService) CreateOrderFromCart(ctx context.Context, userID uint, address *model.ShippingAddress) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":          userID,
		"revalidate_stock": s.opts.RevalidateStock,
	})

	var order *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.WithTx(tx).FindActiveByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		if s.opts.RevalidateStock {
			if err := s.revalidateStock(tx, cart.Items); err != nil {
				return err
			}
		}

		order = buildOrder(userID, cart.Items, s.opts.ShippingCost, address)
		return s.orderRepo.WithTx(tx).Create(order)
	})
	if err != nil {
		if !errors.Is(err, ErrEmptyCart) {
			logger.Warn("Order creation failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		return nil, err
	}

	logger.Info("Order created from cart", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"total_amount": order.TotalAmount.String(),
		"items":        len(order.Items),
	})
	return order, nil
}

// revalidateStock locks every product in the cart and re-checks it.
func (s *orderService) revalidateStock(tx *gorm.DB, items []model.CartItem) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.WithTx(tx).FindByIDsForUpdate(ids)
	if err != nil {
		return err
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return &pricing.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity}
		}
		if err := pricing.ValidateAvailability(&product, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func buildOrder(userID uint, items []model.CartItem, shipping decimal.Decimal, address *model.ShippingAddress) *model.Order {
	totals := pricing.CalculateTotals(pricing.LinesFromCart(items))

	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, model.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal().Round(2),
			Image:       item.Product.Image,
		})
	}

	return &model.Order{
		UserID:          userID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		TotalAmount:     totals.Subtotal.Add(shipping),
		ShippingCost:    shipping,
		ShippingAddress: address,
		Items:           orderItems,
	}
}

// LinkPaymentIntent is the second write of checkout. It runs outside the
// order transaction, so a failure here leaves an unlinked order behind.
func (s *orderService) LinkPaymentIntent(orderID uint, intentID string) error {
	if err := s.orderRepo.LinkPaymentIntent(orderID, intentID); err != nil {
		logger.Error("Failed to link payment intent to order", err, map[string]interface{}{
			"order_id":          orderID,
			"payment_intent_id": intentID,
		})
		return err
	}

	logger.Info("Payment intent linked to order", map[string]interface{}{
		"order_id":          orderID,
		"payment_intent_id": intentID,
	})
	return nil
}

// CompletePayment marks the order paid and closes the user's active cart
// in one transaction. It reports false when the order was already paid,
// in which case nothing else is written.
func (s *orderService) CompletePayment(ctx context.Context, userID, orderID uint, address *model.ShippingAddress) (bool, error) {
	var transitioned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.WithTx(tx).MarkPaid(orderID, address)
		if err != nil {
			return err
		}
		transitioned = ok
		if !ok {
			return nil
		}

		cartRepo := s.cartRepo.WithTx(tx)
		cart, err := cartRepo.FindActiveByUserID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if _, err := cartRepo.DeleteItemsByCartID(cart.ID); err != nil {
			return err
		}
		return cartRepo.UpdateStatus(cart.ID, model.CartStatusCompleted)
	})
	if err != nil {
		logger.Error("Failed to complete payment", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return false, err
	}

	logger.Info("Payment completed for order", map[string]interface{}{
		"user_id":      userID,
		"order_id":     orderID,
		"transitioned": transitioned,
	})
	return transitioned, nil
}

// GetOrder only finds orders owned by userID.
func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndUserID(orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Orders listed", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// ListUnlinked finds orders whose intent was never recorded, either
// because intent creation failed or the link write did.
func (s *orderService) ListUnlinked(olderThan time.Duration) ([]model.Order, error) {
	return s.orderRepo.FindUnlinkedPending(time.Now().Add(-olderThan))
}
