package repository

import (
	"context"
	"time"

	"buybizz/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error)
	AddQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	FindByID(ctx context.Context, itemID string) (*model.CartItem, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*model.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	Delete(ctx context.Context, itemID string) error
	DeleteItems(ctx context.Context, tx *gorm.DB, userID string, itemIDs []string) (int64, error)
	ClearByUser(ctx context.Context, userID string) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cartRepoImpl) FindByUserAndProduct(ctx context.Context, userID, productID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// AddQuantity inserts the line or bumps the existing one for the same product.
func (r *cartRepoImpl) AddQuantity(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}

	var stored model.CartItem
	err = r.db.WithContext(ctx).
		Preload("Product.Vendor").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *cartRepoImpl) FindByID(ctx context.Context, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product.Vendor").
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.conn(tx).WithContext(ctx).
		Preload("Product.Vendor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *cartRepoImpl) Delete(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// DeleteItems removes the given lines of one user's cart and reports how many
// rows actually went away.
func (r *cartRepoImpl) DeleteItems(ctx context.Context, tx *gorm.DB, userID string, itemIDs []string) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	result := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, itemIDs).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

func (r *cartRepoImpl) ClearByUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}
