package service

import (
	"context"
	"testing"

	"buybizz/internal/apperror"
	"buybizz/internal/model"
	"buybizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolve_CreatesMissingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	identity := &model.Identity{ExternalID: "ext_1", Email: "ada@example.test", Name: "Ada"}

	_, ok := f.identity.CurrentUser(ctx, identity)
	assert.False(t, ok)

	user, ok := f.identity.Resolve(ctx, identity)
	require.True(t, ok)
	assert.Equal(t, model.RoleCustomer, user.Role)
	assert.Equal(t, "ada@example.test", user.Email)

	again, ok := f.identity.Resolve(ctx, identity)
	require.True(t, ok)
	assert.Equal(t, user.ID, again.ID)
	assert.EqualValues(t, 1, f.count(t, &model.User{}))
}

func TestIdentitySync_KeepsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "ext_admin", model.RoleAdmin)

	user, err := f.identity.Sync(ctx, &model.Identity{ExternalID: "ext_admin", Email: "new@example.test", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)
	assert.Equal(t, model.RoleAdmin, user.Role)
	assert.Equal(t, "new@example.test", user.Email)
	assert.Equal(t, "Renamed", user.Name)

	_, err = f.identity.Sync(ctx, &model.Identity{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestAuthorize(t *testing.T) {
	customer := &model.User{Role: model.RoleCustomer}
	vendor := &model.User{Role: model.RoleVendor}
	admin := &model.User{Role: model.RoleAdmin}

	tests := []struct {
		name  string
		check func(*model.User) (*model.User, error)
		user  *model.User
		kind  apperror.Kind
		ok    bool
	}{
		{"anonymous auth", RequireAuth, nil, apperror.KindUnauthenticated, false},
		{"customer auth", RequireAuth, customer, 0, true},
		{"customer vendor", RequireVendor, customer, apperror.KindForbidden, false},
		{"vendor vendor", RequireVendor, vendor, 0, true},
		{"admin vendor", RequireVendor, admin, apperror.KindForbidden, false},
		{"vendor admin", RequireAdmin, vendor, apperror.KindForbidden, false},
		{"admin admin", RequireAdmin, admin, 0, true},
		{"anonymous admin", RequireAdmin, nil, apperror.KindUnauthenticated, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tt.check(tt.user)
			if tt.ok {
				require.NoError(t, err)
				assert.Same(t, tt.user, user)
				return
			}
			assert.Nil(t, user)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}
