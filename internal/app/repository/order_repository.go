package repository

import (
	"errors"
	"time"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByIDAndUserID(id, userID uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	LinkPaymentIntent(id uint, intentID string) error
	MarkPaid(id uint, address *model.ShippingAddress) (bool, error)
	FindUnlinkedPending(olderThan time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	})
}

// Create inserts the order together with its items.
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"items":        len(order.Items),
	})

	if err := r.db.Omit("User").Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":      order.UserID,
			"total_amount": order.TotalAmount.String(),
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
				"order_id": id,
			})
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDAndUserID folds ownership into the lookup so a foreign order
// looks exactly like a missing one.
func (r *orderRepository) FindByIDAndUserID(id, userID uint) (*model.Order, error) {
	logger.Debug("Finding order by ID and user in database", map[string]interface{}{
		"order_id": id,
		"user_id":  userID,
	})

	var order model.Order
	if err := r.preloadOrder().Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find order by ID and user in database", err, map[string]interface{}{
				"order_id": id,
				"user_id":  userID,
			})
		}
		return nil, err
	}

	logger.Debug("Order found in database", map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// LinkPaymentIntent records the processor intent id on the order.
func (r *orderRepository) LinkPaymentIntent(id uint, intentID string) error {
	logger.Debug("Linking payment intent to order in database", map[string]interface{}{
		"order_id":          id,
		"payment_intent_id": intentID,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_intent_id", intentID).Error; err != nil {
		logger.Error("Failed to link payment intent in database", err, map[string]interface{}{
			"order_id":          id,
			"payment_intent_id": intentID,
		})
		return err
	}
	return nil
}

// MarkPaid moves a pending payment to completed and reports whether this
// call made the transition. The address is only written when none is set.
func (r *orderRepository) MarkPaid(id uint, address *model.ShippingAddress) (bool, error) {
	logger.Debug("Marking order as paid in database", map[string]interface{}{
		"order_id": id,
	})

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", id, model.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusCompleted,
			"status":         model.OrderStatusPending,
		})
	if result.Error != nil {
		logger.Error("Failed to mark order as paid in database", result.Error, map[string]interface{}{
			"order_id": id,
		})
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if address != nil {
		backfill := model.Order{ID: id, ShippingAddress: address}
		if err := r.db.Model(&backfill).
			Where("shipping_address IS NULL").
			Select("shipping_address").
			Updates(&backfill).Error; err != nil {
			logger.Error("Failed to backfill shipping address in database", err, map[string]interface{}{
				"order_id": id,
			})
			return false, err
		}
	}

	logger.Debug("Order marked as paid in database", map[string]interface{}{
		"order_id": id,
	})
	return true, nil
}

// FindUnlinkedPending lists pending-payment orders that never got a
// payment intent id recorded.
func (r *orderRepository) FindUnlinkedPending(olderThan time.Time) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Where("payment_status = ? AND payment_intent_id IS NULL AND created_at < ?",
		model.PaymentStatusPending, olderThan).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find unlinked orders in database", err, map[string]interface{}{
			"older_than": olderThan,
		})
		return nil, err
	}
	return orders, nil
}
