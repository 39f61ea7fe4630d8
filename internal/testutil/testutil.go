// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"buybizz/internal/client"
	"buybizz/internal/config"
	"buybizz/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated SQLite database living in the test's temp dir.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := client.InitDatabase(&config.Database{
		Driver: "sqlite",
		URL:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, externalID string, role model.Role) *model.User {
	t.Helper()

	user := &model.User{
		ExternalID: externalID,
		Email:      externalID + "@example.test",
		Name:       externalID,
		Role:       role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func CreateProduct(t testing.TB, db *gorm.DB, vendor *model.User, name, price string) *model.Product {
	t.Helper()

	product := &model.Product{
		VendorID:    vendor.ID,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    "automation",
		Features:    []string{"fast", "reliable"},
		Status:      model.ProductActive,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(product).Error)
	return product
}
