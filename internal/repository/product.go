package repository

import (
	"context"
	"strings"

	"buybizz/internal/dto"
	"buybizz/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindByVendorAndName(ctx context.Context, vendorID, name string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]*model.Product, int64, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	Delete(ctx context.Context, productID string) error
	CountByStatus(ctx context.Context, vendorID string) (map[model.ProductStatus]int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByVendorAndName(ctx context.Context, vendorID, name string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND name = ?", vendorID, name).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// List applies the storefront filters. Search is a plain case-insensitive
// substring match.
func (r *productRepoImpl) List(ctx context.Context, filter dto.ProductFilter) ([]*model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.VendorID != "" {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(short_description) LIKE ?",
			like, like, like,
		)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*model.Product
	err := query.
		Preload("Vendor").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepoImpl) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete relies on foreign key cascades to drop cart lines, order items and
// entitlements referencing the product.
func (r *productRepoImpl) Delete(ctx context.Context, productID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CountByStatus counts all products, or one vendor's when vendorID is set.
func (r *productRepoImpl) CountByStatus(ctx context.Context, vendorID string) (map[model.ProductStatus]int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}

	var rows []struct {
		Status model.ProductStatus
		Count  int64
	}
	err := query.
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[model.ProductStatus]int64{
		model.ProductActive:   0,
		model.ProductInactive: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
