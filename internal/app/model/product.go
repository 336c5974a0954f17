package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string // 재고/판매 상태 (파생 값)

const (
	ProductStatusActive   ProductStatus = "active"    // 판매 중
	ProductStatusLowStock ProductStatus = "low_stock" // 재고 부족 (min_stock 이하)
	ProductStatusInactive ProductStatus = "inactive"  // 판매 중지
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`                     // 상품 ID
	Name        string          `gorm:"not null" json:"name"`                     // 상품명
	SKU         string          `gorm:"type:varchar(100);uniqueIndex" json:"sku"` // 재고 관리 코드
	Category    string          `gorm:"type:varchar(100);index" json:"category"`  // 카테고리
	Description string          `gorm:"type:text" json:"description"`             // 상품 설명
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // 기본 단가
	Cost        decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"cost"` // 원가
	Stock       int             `gorm:"not null;default:0" json:"stock"`          // 재고 수량
	MinStock    *int            `json:"min_stock,omitempty"`                      // 재고 부족 기준
	IsActive    bool            `gorm:"not null;index" json:"is_active"`          // 판매 여부
	IsFeatured  bool            `gorm:"not null;index" json:"is_featured"`        // 추천 상품 여부
	Image       string          `json:"image"`                                    // 대표 이미지 키
	CreatedAt   time.Time       `json:"created_at"`                               // 생성 시각
	UpdatedAt   time.Time       `json:"updated_at"`                               // 수정 시각

	PricingTiers []PricingTier `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"pricing_tiers,omitempty"` // 수량별 단가
}

func (Product) TableName() string {
	return "products"
}

// Status derives the catalog status from activity and stock levels.
func (p Product) Status() ProductStatus {
	if !p.IsActive {
		return ProductStatusInactive
	}
	if p.MinStock != nil && p.Stock <= *p.MinStock {
		return ProductStatusLowStock
	}
	return ProductStatusActive
}

type PricingTier struct {
	ID        uint            `gorm:"primarykey" json:"id"`                                           // 단가 구간 ID
	ProductID uint            `gorm:"not null;index:idx_pricing_tiers_product_min" json:"product_id"` // 상품 ID
	MinQty    int             `gorm:"not null;index:idx_pricing_tiers_product_min" json:"min_qty"`    // 최소 수량
	MaxQty    *int            `json:"max_qty"`                                                        // 최대 수량 (nil = 상한 없음)
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`                       // 구간 단가
	Discount  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`           // 할인율(%) 표시용
	Label     string          `gorm:"type:varchar(100)" json:"label"`                                 // 구간 이름
	CreatedAt time.Time       `json:"created_at"`                                                     // 생성 시각
	UpdatedAt time.Time       `json:"updated_at"`                                                     // 수정 시각
}

func (PricingTier) TableName() string {
	return "pricing_tiers"
}

// Contains reports whether qty falls inside the tier's range.
func (t PricingTier) Contains(qty int) bool {
	if qty < t.MinQty {
		return false
	}
	return t.MaxQty == nil || qty <= *t.MaxQty
}
