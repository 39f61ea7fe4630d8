package model

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

func ParseProductStatus(s string) (ProductStatus, bool) {
	st := ProductStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st == ProductActive || st == ProductInactive
}

// Product is a sellable agent listing owned by one vendor.
type Product struct {
	Base
	VendorID         string                      `gorm:"size:36;index;not null" json:"vendorId"`
	Name             string                      `gorm:"size:255;not null" json:"name"`
	Description      string                      `gorm:"type:text;not null" json:"description"`
	ShortDescription string                      `gorm:"size:512" json:"shortDescription"`
	Price            decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	OriginalPrice    decimal.NullDecimal         `gorm:"type:decimal(12,2)" json:"originalPrice"`
	Category         string                      `gorm:"size:64;index;not null" json:"category"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	Features         datatypes.JSONSlice[string] `json:"features"`
	ImageURL         string                      `gorm:"size:1024" json:"imageUrl,omitempty"`
	DemoURL          string                      `gorm:"size:1024" json:"demoUrl,omitempty"`
	DocsURL          string                      `gorm:"size:1024" json:"docsUrl,omitempty"`
	Status           ProductStatus               `gorm:"size:16;index;not null;default:ACTIVE" json:"status"`

	Vendor *User `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE" json:"vendor,omitempty"`
}

func (p *Product) Active() bool {
	return p.Status == ProductActive
}

type ProductSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Status   ProductStatus   `json:"status"`
	Vendor   *UserSummary    `json:"vendor,omitempty"`
}

func (p *Product) Summary() *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		ImageURL: p.ImageURL,
		Status:   p.Status,
		Vendor:   p.Vendor.Summary(),
	}
}
