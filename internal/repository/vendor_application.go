package repository

import (
	"context"
	"time"

	"buybizz/internal/model"

	"gorm.io/gorm"
)

type VendorApplicationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, app *model.VendorApplication) error
	FindByID(ctx context.Context, tx *gorm.DB, id string) (*model.VendorApplication, error)
	FindPendingByUser(ctx context.Context, userID string) (*model.VendorApplication, error)
	List(ctx context.Context, status model.ApplicationStatus) ([]*model.VendorApplication, error)
	CountByStatus(ctx context.Context, status model.ApplicationStatus) (int64, error)
	// Review moves a PENDING application to its final status. It returns false
	// when the application was no longer PENDING.
	Review(ctx context.Context, tx *gorm.DB, id string, status model.ApplicationStatus, reviewerID string, reason *string) (bool, error)
}

type vendorApplicationRepoImpl struct {
	db *gorm.DB
}

func NewVendorApplicationRepository(db *gorm.DB) VendorApplicationRepository {
	return &vendorApplicationRepoImpl{
		db: db,
	}
}

func (r *vendorApplicationRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *vendorApplicationRepoImpl) Create(ctx context.Context, tx *gorm.DB, app *model.VendorApplication) error {
	return r.conn(tx).WithContext(ctx).Omit("User").Create(app).Error
}

func (r *vendorApplicationRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, id string) (*model.VendorApplication, error) {
	var app model.VendorApplication
	err := r.conn(tx).WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *vendorApplicationRepoImpl) FindPendingByUser(ctx context.Context, userID string) (*model.VendorApplication, error) {
	var app model.VendorApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.ApplicationPending).
		First(&app).Error
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *vendorApplicationRepoImpl) List(ctx context.Context, status model.ApplicationStatus) ([]*model.VendorApplication, error) {
	query := r.db.WithContext(ctx).Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []*model.VendorApplication
	err := query.
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *vendorApplicationRepoImpl) CountByStatus(ctx context.Context, status model.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.VendorApplication{}).
		Where("status = ?", status).
		Count(&count).Error

	return count, err
}

func (r *vendorApplicationRepoImpl) Review(ctx context.Context, tx *gorm.DB, id string, status model.ApplicationStatus, reviewerID string, reason *string) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": now,
		"updated_at":  now,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}

	result := r.conn(tx).WithContext(ctx).
		Model(&model.VendorApplication{}).
		Where("id = ? AND status = ?", id, model.ApplicationPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
