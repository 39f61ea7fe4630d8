package repository

import (
	"context"
	"time"

	"buybizz/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesRow is revenue and units aggregated for one product or vendor.
type SalesRow struct {
	ID      string
	Name    string
	Revenue decimal.Decimal
	Units   int64
}

// TimeRange is half-open: From <= t < To. Zero bounds are open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// ReportRepository holds the read-only aggregations behind the admin and
// vendor dashboards.
type ReportRepository interface {
	CountOrders(ctx context.Context) (int64, error)
	OrderRevenue(ctx context.Context, span TimeRange) (decimal.Decimal, error)
	VendorSales(ctx context.Context, vendorID string, span TimeRange) (SalesRow, error)
	ProductSales(ctx context.Context, productIDs []string) (map[string]SalesRow, error)
	TopProducts(ctx context.Context, limit int) ([]SalesRow, error)
	TopVendors(ctx context.Context, limit int) ([]SalesRow, error)
}

type reportRepoImpl struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepoImpl{
		db: db,
	}
}

func applyRange(query *gorm.DB, column string, span TimeRange) *gorm.DB {
	if !span.From.IsZero() {
		query = query.Where(column+" >= ?", span.From)
	}
	if !span.To.IsZero() {
		query = query.Where(column+" < ?", span.To)
	}
	return query
}

func (r *reportRepoImpl) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Count(&count).Error

	return count, err
}

func (r *reportRepoImpl) OrderRevenue(ctx context.Context, span TimeRange) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("COALESCE(SUM(amount), 0)")
	err := applyRange(query, "created_at", span).
		Row().Scan(&revenue)

	return revenue, err
}

func (r *reportRepoImpl) VendorSales(ctx context.Context, vendorID string, span TimeRange) (SalesRow, error) {
	row := SalesRow{ID: vendorID}
	query := r.db.WithContext(ctx).
		Table("order_items").
		Select("COALESCE(SUM(order_items.price * order_items.quantity), 0), COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.vendor_id = ?", vendorID)
	err := applyRange(query, "order_items.created_at", span).
		Row().Scan(&row.Revenue, &row.Units)

	return row, err
}

func (r *reportRepoImpl) ProductSales(ctx context.Context, productIDs []string) (map[string]SalesRow, error) {
	sales := make(map[string]SalesRow, len(productIDs))
	if len(productIDs) == 0 {
		return sales, nil
	}

	var rows []SalesRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("product_id AS id, COALESCE(SUM(price * quantity), 0) AS revenue, COALESCE(SUM(quantity), 0) AS units").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		sales[row.ID] = row
	}
	return sales, nil
}

// TopProducts ranks by revenue, ties broken by product id.
func (r *reportRepoImpl) TopProducts(ctx context.Context, limit int) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("products.id AS id, products.name AS name, SUM(order_items.price * order_items.quantity) AS revenue, SUM(order_items.quantity) AS units").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("products.id, products.name").
		Order("revenue DESC").
		Order("products.id").
		Limit(limit).
		Scan(&rows).Error

	return rows, err
}

// TopVendors ranks by revenue, ties broken by vendor id.
func (r *reportRepoImpl) TopVendors(ctx context.Context, limit int) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("users.id AS id, COALESCE(users.company_name, users.name) AS name, SUM(order_items.price * order_items.quantity) AS revenue, SUM(order_items.quantity) AS units").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN users ON users.id = products.vendor_id").
		Group("users.id, users.company_name, users.name").
		Order("revenue DESC").
		Order("users.id").
		Limit(limit).
		Scan(&rows).Error

	return rows, err
}
