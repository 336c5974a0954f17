package model

import (
	"time"
)

type UserRole string // 사용자 권한 타입

const (
	RoleUser  UserRole = "user"  // 일반 거래처
	RoleAdmin UserRole = "admin" // 관리자
)

// User mirrors the account owned by the external auth service.
// Only the columns carts and orders reference are kept here.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 사용자 ID
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`           // 이메일
	Name      string    `gorm:"not null" json:"name"`                        // 이름
	Role      UserRole  `gorm:"type:varchar(20);default:'user'" json:"role"` // 권한
	IsActive  bool      `gorm:"not null" json:"is_active"`                   // 활성 여부
	CreatedAt time.Time `json:"created_at"`                                  // 생성 시각
	UpdatedAt time.Time `json:"updated_at"`                                  // 수정 시각

	Carts  []Cart  `gorm:"foreignKey:UserID" json:"-"` // 장바구니 이력
	Orders []Order `gorm:"foreignKey:UserID" json:"-"` // 주문 이력
}

func (User) TableName() string {
	return "users"
}
