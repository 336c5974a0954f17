package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string   // 주문 처리 상태
type PaymentStatus string // 결제 상태

const (
	OrderStatusPaymentPending OrderStatus = "payment_pending" // 결제 대기
	OrderStatusPending        OrderStatus = "pending"         // 주문 접수
	OrderStatusProcessing     OrderStatus = "processing"      // 준비 중
	OrderStatusShipped        OrderStatus = "shipped"         // 배송 중
	OrderStatusDelivered      OrderStatus = "delivered"       // 배송 완료
	OrderStatusCancelled      OrderStatus = "cancelled"       // 주문 취소

	PaymentStatusPending   PaymentStatus = "pending"   // 결제 대기
	PaymentStatusCompleted PaymentStatus = "completed" // 결제 완료
	PaymentStatusFailed    PaymentStatus = "failed"    // 결제 실패
	PaymentStatusRefunded  PaymentStatus = "refunded"  // 환불 완료
)

// ShippingAddress is stored as a JSON blob on the order.
type ShippingAddress struct {
	Street  string `json:"street" binding:"required,max=255"`
	City    string `json:"city" binding:"required,max=255"`
	State   string `json:"state" binding:"required,max=255"`
	Zip     string `json:"zip" binding:"required,max=20"`
	Country string `json:"country" binding:"required,max=255"`
}

type Order struct {
	ID              uint             `gorm:"primarykey" json:"id"`                                                    // 주문 ID
	UserID          uint             `gorm:"not null;index" json:"user_id"`                                           // 주문자 ID
	Status          OrderStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`               // 주문 상태
	PaymentStatus   PaymentStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"` // 결제 상태
	PaymentIntentID *string          `gorm:"type:varchar(255);index" json:"payment_intent_id"`                        // 결제 인텐트 ID
	TotalAmount     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_amount"`                         // 총 결제 금액 (상품 합계 + 배송비)
	ShippingCost    decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`              // 배송비
	ShippingAddress *ShippingAddress `gorm:"serializer:json;type:json" json:"shipping_address"`                       // 배송지 (JSON)
	CreatedAt       time.Time        `json:"created_at"`                                                              // 생성 시각
	UpdatedAt       time.Time        `json:"updated_at"`                                                              // 수정 시각

	User  User        `gorm:"foreignKey:UserID" json:"-"`                                            // 주문자
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 주문 항목
}

func (Order) TableName() string {
	return "orders"
}

// IsPaid reports whether payment confirmation already happened.
func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusCompleted
}

// OrderItem is a frozen copy of a cart line at order creation time.
type OrderItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`                          // 주문 항목 ID
	OrderID     uint            `gorm:"not null;index" json:"order_id"`                // 주문 ID
	ProductID   uint            `gorm:"not null;index" json:"product_id"`              // 상품 ID (참조용)
	ProductName string          `gorm:"not null" json:"product_name"`                  // 주문 당시 상품명
	Quantity    int             `gorm:"not null" json:"quantity"`                      // 수량
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"` // 주문 당시 단가
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`   // 수량 x 단가
	Image       string          `json:"image"`                                         // 주문 당시 이미지 키
	CreatedAt   time.Time       `json:"created_at"`                                    // 생성 시각
	UpdatedAt   time.Time       `json:"updated_at"`                                    // 수정 시각
}

func (OrderItem) TableName() string {
	return "order_items"
}
