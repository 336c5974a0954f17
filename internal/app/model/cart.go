package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string // 장바구니 상태

const (
	CartStatusActive    CartStatus = "active"    // 사용 중
	CartStatusCompleted CartStatus = "completed" // 결제 완료로 종료
)

// Cart is a user's pre-order basket. At most one cart per user is active.
type Cart struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                                                    // 장바구니 ID
	UserID    uint       `gorm:"not null;index;uniqueIndex:idx_carts_user_active,where:status = 'active'" json:"user_id"` // 소유자 ID
	Status    CartStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`                                // 상태
	CreatedAt time.Time  `json:"created_at"`                                                                              // 생성 시각
	UpdatedAt time.Time  `json:"updated_at"`                                                                              // 수정 시각

	User  User       `gorm:"foreignKey:UserID" json:"-"`                                           // 소유자
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 담긴 상품
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`                                                     // 항목 ID
	CartID    uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`          // 장바구니 ID
	ProductID uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"` // 상품 ID
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`                                       // 수량
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`                            // 담을 당시 단가
	CreatedAt time.Time       `json:"created_at"`                                                               // 생성 시각
	UpdatedAt time.Time       `json:"updated_at"`                                                               // 수정 시각

	Cart    Cart    `gorm:"foreignKey:CartID" json:"-"`                    // 장바구니
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 상품 정보
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal is quantity times the captured unit price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
