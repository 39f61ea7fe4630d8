package dto

import (
	"time"

	"buybizz/internal/model"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize clamps the query to sane bounds.
func (p PageQuery) Normalize() PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

func (p PageQuery) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(p PageQuery, total int64) Pagination {
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// ---- products ----

type ProductFilter struct {
	PageQuery
	Category string `query:"category"`
	Status   string `query:"status"`
	VendorID string `query:"vendorId"`
	Search   string `query:"search"`
}

type ProductRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            *decimal.Decimal `json:"price"`
	OriginalPrice    *decimal.Decimal `json:"originalPrice"`
	Category         *string          `json:"category"`
	Tags             []string         `json:"tags"`
	Features         []string         `json:"features"`
	ImageURL         *string          `json:"imageUrl"`
	DemoURL          *string          `json:"demoUrl"`
	DocsURL          *string          `json:"docsUrl"`
	Status           *string          `json:"status"`
}

type ProductListResponse struct {
	Agents     []*model.Product `json:"agents"`
	Pagination Pagination       `json:"pagination"`
}

// ---- cart ----

type AddCartItemRequest struct {
	AgentID  string `json:"agentId"`
	Quantity *int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items     []*model.CartItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
}

// ---- orders ----

type UnavailableProduct struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Status model.ProductStatus `json:"status"`
}

type OrderProductKeys struct {
	Product  *model.ProductSummary `json:"agent"`
	Quantity int                   `json:"quantity"`
	Price    decimal.Decimal       `json:"price"`
	APIKeys  []string              `json:"apiKeys"`
}

type OrderResponse struct {
	Order    *model.Order        `json:"order"`
	Products []*OrderProductKeys `json:"agents"`
}

type OrderListResponse struct {
	Orders []*model.Order `json:"orders"`
}

// ---- entitlements ----

type OwnedProduct struct {
	Product          *model.ProductSummary `json:"agent"`
	APIKeys          []string              `json:"apiKeys"`
	LicenseCount     int                   `json:"licenseCount"`
	TotalSpent       decimal.Decimal       `json:"totalSpent"`
	FirstPurchasedAt time.Time             `json:"firstPurchasedAt"`
	OrderIDs         []string              `json:"orderIds"`
}

// ---- vendor ----

type VendorRegisterRequest struct {
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
}

type VendorProductStats struct {
	*model.Product
	UnitsSold int64           `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type VendorStats struct {
	TotalProducts    int64           `json:"totalProducts"`
	ActiveProducts   int64           `json:"activeProducts"`
	UnitsSold        int64           `json:"unitsSold"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	MonthRevenue     decimal.Decimal `json:"monthRevenue"`
	LastMonthRevenue decimal.Decimal `json:"lastMonthRevenue"`
	GrowthPercent    float64         `json:"growthPercent"`
}

// ---- admin ----

type RankedEntry struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Units   int64           `json:"units"`
}

type AdminStats struct {
	UsersByRole      map[model.Role]int64          `json:"usersByRole"`
	TotalUsers       int64                         `json:"totalUsers"`
	ProductsByStatus map[model.ProductStatus]int64 `json:"productsByStatus"`
	TotalProducts    int64                         `json:"totalProducts"`
	TotalOrders      int64                         `json:"totalOrders"`
	TotalRevenue     decimal.Decimal               `json:"totalRevenue"`
	MonthRevenue     decimal.Decimal               `json:"monthRevenue"`
	LastMonthRevenue decimal.Decimal               `json:"lastMonthRevenue"`
	GrowthPercent    float64                       `json:"growthPercent"`
	TopVendors       []RankedEntry                 `json:"topVendors"`
	TopProducts      []RankedEntry                 `json:"topAgents"`

	PendingVendorApplications int64 `json:"pendingVendorApplications"`
}

type UserFilter struct {
	PageQuery
	Role   string `query:"role"`
	Search string `query:"search"`
}

type UserListResponse struct {
	Users      []*model.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

type AdminProductListResponse struct {
	Agents     []*VendorProductStats `json:"agents"`
	Pagination Pagination            `json:"pagination"`
}

type OrderFilter struct {
	PageQuery
	Status string `query:"status"`
}

type AdminOrderListResponse struct {
	Orders     []*model.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type ApplicationFilter struct {
	Status string `query:"status"`
}

type ReviewApplicationRequest struct {
	ApplicationID string `json:"applicationId"`
	Action        string `json:"action"` // approve | reject
	Reason        string `json:"reason"`
}
