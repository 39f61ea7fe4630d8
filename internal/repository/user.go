package repository

import (
	"context"
	"strings"
	"time"

	"buybizz/internal/dto"
	"buybizz/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)
	UpsertByExternalID(ctx context.Context, user *model.User) (*model.User, error)
	DeleteByExternalID(ctx context.Context, externalID string) (int64, error)
	LockForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.User, error)
	UpdateRole(ctx context.Context, tx *gorm.DB, id string, role model.Role, companyName *string) error
	List(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error)
	CountByRole(ctx context.Context) (map[model.Role]int64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepoImpl) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// UpsertByExternalID creates the user or refreshes email and name. Role and
// company are left alone on conflict.
func (r *userRepoImpl) UpsertByExternalID(ctx context.Context, user *model.User) (*model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleCustomer
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"email":      user.Email,
			"name":       user.Name,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	// the generated id is not the stored one when the row already existed
	return r.FindByExternalID(ctx, user.ExternalID)
}

func (r *userRepoImpl) DeleteByExternalID(ctx context.Context, externalID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Delete(&model.User{})

	return result.RowsAffected, result.Error
}

// LockForUpdate takes a row lock on the user for the rest of tx. SQLite has no
// row locks; its single writer gives the same ordering.
func (r *userRepoImpl) LockForUpdate(ctx context.Context, tx *gorm.DB, id string) (*model.User, error) {
	var user model.User
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) UpdateRole(ctx context.Context, tx *gorm.DB, id string, role model.Role, companyName *string) error {
	updates := map[string]interface{}{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}
	if companyName != nil {
		updates["company_name"] = *companyName
	}

	result := r.conn(tx).WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepoImpl) List(ctx context.Context, filter dto.UserFilter) ([]*model.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*model.User
	err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepoImpl) CountByRole(ctx context.Context) (map[model.Role]int64, error) {
	var rows []struct {
		Role  model.Role
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[model.Role]int64{
		model.RoleCustomer: 0,
		model.RoleVendor:   0,
		model.RoleAdmin:    0,
	}
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
