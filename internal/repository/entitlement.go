package repository

import (
	"context"

	"buybizz/internal/model"

	"gorm.io/gorm"
)

type EntitlementRepository interface {
	CreateMany(ctx context.Context, tx *gorm.DB, entitlements []*model.Entitlement) error
	ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error)
	ListByOrder(ctx context.Context, orderID string) ([]*model.Entitlement, error)
}

type entitlementRepoImpl struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepoImpl{
		db: db,
	}
}

func (r *entitlementRepoImpl) CreateMany(ctx context.Context, tx *gorm.DB, entitlements []*model.Entitlement) error {
	if len(entitlements) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Omit("User", "Product", "Order").CreateInBatches(&entitlements, insertBatchSize).Error
}

func (r *entitlementRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error) {
	var entitlements []*model.Entitlement
	err := r.db.WithContext(ctx).
		Preload("Product.Vendor").
		Where("user_id = ?", userID).
		Order("purchased_at").
		Order("id").
		Find(&entitlements).Error
	if err != nil {
		return nil, err
	}

	return entitlements, nil
}

func (r *entitlementRepoImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.Entitlement, error) {
	var entitlements []*model.Entitlement
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("purchased_at").
		Order("id").
		Find(&entitlements).Error
	if err != nil {
		return nil, err
	}

	return entitlements, nil
}
