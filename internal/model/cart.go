package model

// MaxLineQuantity caps units per cart line. Each unit becomes one
// entitlement and one key at checkout.
const MaxLineQuantity = 1000

// CartItem is unique per (user, product); adding again bumps Quantity.
type CartItem struct {
	Base
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_product,priority:1" json:"userId"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_cart_user_product,priority:2;index" json:"productId"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}
