package controller

import (
	"context"
	"time"

	"github.com/ikkim/agroshop-backend/internal/app/model"
	"github.com/ikkim/agroshop-backend/internal/app/service"
	"github.com/ikkim/agroshop-backend/internal/storage"
	"github.com/shopspring/decimal"
)

// Money goes out as JSON numbers with two decimals, e.g. 45.5 or 100.

type CartItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	Image       *string `json:"image"`
}

type CartTotalsResponse struct {
	Subtotal      float64 `json:"subtotal"`
	ItemCount     int     `json:"item_count"`
	TotalQuantity int     `json:"total_quantity"`
}

type CartResponse struct {
	ID     *uint              `json:"id"`
	Status model.CartStatus   `json:"status"`
	Items  []CartItemResponse `json:"items"`
	Totals interface{}        `json:"totals"` // 0 when the user has no cart
}

type OrderItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	Image       *string `json:"image"`
}

type OrderResponse struct {
	ID              uint                   `json:"id"`
	UserID          uint                   `json:"user_id"`
	Status          model.OrderStatus      `json:"status"`
	PaymentStatus   model.PaymentStatus    `json:"payment_status"`
	PaymentIntentID *string                `json:"payment_intent_id"`
	TotalAmount     float64                `json:"total_amount"`
	ShippingCost    float64                `json:"shipping_cost"`
	ShippingAddress *model.ShippingAddress `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type PricingTierResponse struct {
	ID       uint    `json:"id"`
	MinQty   int     `json:"min_qty"`
	MaxQty   *int    `json:"max_qty"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	Label    string  `json:"label"`
}

type ProductResponse struct {
	ID           uint                  `json:"id"`
	Name         string                `json:"name"`
	SKU          string                `json:"sku"`
	Category     string                `json:"category"`
	Description  string                `json:"description"`
	Price        float64               `json:"price"`
	Stock        int                   `json:"stock"`
	IsActive     bool                  `json:"is_active"`
	IsFeatured   bool                  `json:"is_featured"`
	Image        *string               `json:"image"`
	Status       model.ProductStatus   `json:"status"`
	PricingTiers []PricingTierResponse `json:"pricing_tiers,omitempty"`
}

type QuoteResponse struct {
	ProductID uint                 `json:"product_id"`
	Quantity  int                  `json:"quantity"`
	UnitPrice float64              `json:"unit_price"`
	Subtotal  float64              `json:"subtotal"`
	Tier      *PricingTierResponse `json:"tier"`
	Available bool                 `json:"available"`
}

// Presenter turns models into response bodies and resolves image keys.
type Presenter struct {
	images storage.ImageResolver
}

func NewPresenter(images storage.ImageResolver) *Presenter {
	if images == nil {
		images = storage.StaticResolver{}
	}
	return &Presenter{images: images}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func (p *Presenter) image(ctx context.Context, key string) *string {
	if key == "" {
		return nil
	}
	url := p.images.URL(ctx, key)
	return &url
}

func (p *Presenter) Cart(ctx context.Context, view *service.CartView) CartResponse {
	items := make([]CartItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Subtotal:    money(item.Subtotal()),
			Image:       p.image(ctx, item.Product.Image),
		})
	}

	resp := CartResponse{
		ID:     view.CartID,
		Status: view.Status,
		Items:  items,
		Totals: 0,
	}
	if view.CartID != nil {
		resp.Totals = CartTotalsResponse{
			Subtotal:      money(view.Totals.Subtotal),
			ItemCount:     view.Totals.ItemCount,
			TotalQuantity: view.Totals.TotalQuantity,
		}
	}
	return resp
}

func (p *Presenter) Order(ctx context.Context, order *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Subtotal:    money(item.Subtotal),
			Image:       p.image(ctx, item.Image),
		})
	}

	return OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		PaymentIntentID: order.PaymentIntentID,
		TotalAmount:     money(order.TotalAmount),
		ShippingCost:    money(order.ShippingCost),
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func (p *Presenter) Orders(ctx context.Context, orders []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, p.Order(ctx, &orders[i]))
	}
	return resp
}

func tierResponse(t model.PricingTier) PricingTierResponse {
	return PricingTierResponse{
		ID:       t.ID,
		MinQty:   t.MinQty,
		MaxQty:   t.MaxQty,
		Price:    money(t.Price),
		Discount: money(t.Discount),
		Label:    t.Label,
	}
}

func (p *Presenter) Product(ctx context.Context, product *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		Category:    product.Category,
		Description: product.Description,
		Price:       money(product.Price),
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		IsFeatured:  product.IsFeatured,
		Image:       p.image(ctx, product.Image),
		Status:      product.Status(),
	}
	for _, tier := range product.PricingTiers {
		resp.PricingTiers = append(resp.PricingTiers, tierResponse(tier))
	}
	return resp
}

func (p *Presenter) Products(ctx context.Context, products []model.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, p.Product(ctx, &products[i]))
	}
	return resp
}

func (p *Presenter) Quote(quote *service.Quote) QuoteResponse {
	resp := QuoteResponse{
		ProductID: quote.ProductID,
		Quantity:  quote.Quantity,
		UnitPrice: money(quote.UnitPrice),
		Subtotal:  money(quote.Subtotal),
		Available: quote.Available,
	}
	if quote.Tier != nil {
		tier := tierResponse(*quote.Tier)
		resp.Tier = &tier
	}
	return resp
}
