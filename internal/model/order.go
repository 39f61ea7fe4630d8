package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderFailed    OrderStatus = "FAILED"
)

// Order is immutable once created; Amount is frozen at checkout.
type Order struct {
	Base
	UserID string          `gorm:"size:36;index;not null" json:"userId"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status OrderStatus     `gorm:"size:16;index;not null;default:PENDING" json:"status"`

	User  *User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem snapshots the unit price at purchase time.
type OrderItem struct {
	Base
	OrderID   string          `gorm:"size:36;index;not null" json:"orderId"`
	ProductID string          `gorm:"size:36;index;not null" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

// Entitlement is one purchased seat: one row and one key per unit bought.
type Entitlement struct {
	Base
	UserID      string    `gorm:"size:36;index;not null" json:"userId"`
	ProductID   string    `gorm:"size:36;index;not null" json:"productId"`
	OrderID     string    `gorm:"size:36;index;not null" json:"orderId"`
	APIKey      string    `gorm:"column:api_key;size:128;uniqueIndex;not null" json:"apiKey"`
	PurchasedAt time.Time `gorm:"index;not null" json:"purchasedAt"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Order   *Order   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}
