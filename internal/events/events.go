// Package events publishes order lifecycle notifications for downstream
// consumers (fulfillment, accounting). Publishing is best effort: the
// order state in the database is the source of truth.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/agroshop-backend/internal/app/model"
)

type Type string

const (
	OrderCreated Type = "order.created"
	OrderPaid    Type = "order.paid"
)

// OrderEvent is the wire payload for every order topic.
type OrderEvent struct {
	Type            Type      `json:"type"`
	OrderID         uint      `json:"order_id"`
	UserID          uint      `json:"user_id"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	TotalAmount     string    `json:"total_amount"`
	ShippingCost    string    `json:"shipping_cost"`
	ItemCount       int       `json:"item_count"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewOrderEvent snapshots the fields consumers need from an order.
func NewOrderEvent(t Type, order *model.Order) OrderEvent {
	evt := OrderEvent{
		Type:          t,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		ShippingCost:  order.ShippingCost.StringFixed(2),
		ItemCount:     len(order.Items),
		OccurredAt:    time.Now().UTC(),
	}
	if order.PaymentIntentID != nil {
		evt.PaymentIntentID = *order.PaymentIntentID
	}
	return evt
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
	Close() error
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// Fanout publishes every event to each publisher in order. One failing
// publisher does not stop the rest.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt OrderEvent) error {
	var err error
	for _, p := range f {
		err = errors.Join(err, p.Publish(ctx, evt))
	}
	return err
}

func (f Fanout) Close() error {
	var err error
	for _, p := range f {
		err = errors.Join(err, p.Close())
	}
	return err
}
