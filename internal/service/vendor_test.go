package service

import (
	"context"
	"testing"
	"time"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := testutil.CreateUser(t, f.db, "user_1", model.RoleCustomer)

	_, err := f.vendor.Register(ctx, customer, &dto.VendorRegisterRequest{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	vendor, err := f.vendor.Register(ctx, customer, &dto.VendorRegisterRequest{CompanyName: "Acme AI"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, vendor.Role)
	require.NotNil(t, vendor.CompanyName)
	assert.Equal(t, "Acme AI", *vendor.CompanyName)

	apps, err := f.vendor.ListApplications(ctx, "approved")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, customer.ID, apps[0].UserID)

	_, err = f.vendor.Register(ctx, vendor, &dto.VendorRegisterRequest{CompanyName: "Again"})
	assert.ErrorIs(t, err, apperror.Conflict("AlreadyVendor", ""))
}

func TestVendorReview_Approve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, f.db, "admin_1", model.RoleAdmin)
	applicant := testutil.CreateUser(t, f.db, "user_1", model.RoleCustomer)

	app, err := f.vendor.Apply(ctx, applicant, &dto.VendorRegisterRequest{CompanyName: "Acme AI", Description: "We build agents"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)

	_, err = f.vendor.Apply(ctx, applicant, &dto.VendorRegisterRequest{Description: "Second try"})
	assert.ErrorIs(t, err, apperror.Conflict("ApplicationPending", ""))

	reviewed, err := f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: app.ID, Action: "approve"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, admin.ID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	user, err := f.userRepo.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, user.Role)
	require.NotNil(t, user.CompanyName)
	assert.Equal(t, "Acme AI", *user.CompanyName)

	// reviews are final
	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: app.ID, Action: "reject"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestVendorReview_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, f.db, "admin_1", model.RoleAdmin)
	applicant := testutil.CreateUser(t, f.db, "user_1", model.RoleCustomer)
	app, err := f.vendor.Apply(ctx, applicant, &dto.VendorRegisterRequest{Description: "We build agents"})
	require.NoError(t, err)

	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: app.ID, Action: "maybe"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	reviewed, err := f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: app.ID, Action: "reject", Reason: "incomplete"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, reviewed.Status)
	require.NotNil(t, reviewed.RejectionReason)
	assert.Equal(t, "incomplete", *reviewed.RejectionReason)

	user, err := f.userRepo.FindByID(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)

	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: "missing", Action: "approve"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestVendorStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	rival := testutil.CreateUser(t, f.db, "vendor_2", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	testutil.CreateProduct(t, f.db, vendor, "Unsold", "5.00")
	other := testutil.CreateProduct(t, f.db, rival, "Other", "70.00")

	f.addToCart(t, buyer, writer, 2)
	f.addToCart(t, buyer, other, 1)
	_, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	stats, err := f.vendor.Stats(ctx, vendor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.EqualValues(t, 2, stats.UnitsSold)
	assert.Equal(t, "100.00", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, "100.00", stats.MonthRevenue.StringFixed(2))
	assert.True(t, stats.LastMonthRevenue.IsZero())
	assert.Equal(t, 100.0, stats.GrowthPercent)

	products, err := f.vendor.Products(ctx, vendor, dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, products.Agents, 2)
	sold := map[string]int64{}
	for _, p := range products.Agents {
		sold[p.Name] = p.UnitsSold
	}
	assert.Equal(t, map[string]int64{"Writer": 2, "Unsold": 0}, sold)
}

func TestVendorStats_LastMonthComparison(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "40.00")

	f.addToCart(t, buyer, writer, 1)
	_, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	// view the same sales from the following month
	now := time.Now().UTC()
	nextMonth := time.Date(now.Year(), now.Month()+1, 15, 12, 0, 0, 0, time.UTC)
	f.vendor.(*vendorServiceImpl).now = func() time.Time { return nextMonth }

	stats, err := f.vendor.Stats(ctx, vendor)
	require.NoError(t, err)
	assert.True(t, stats.MonthRevenue.IsZero())
	assert.Equal(t, "40.00", stats.LastMonthRevenue.StringFixed(2))
	assert.Equal(t, -100.0, stats.GrowthPercent)
}

func TestVendorReview_IsOneWay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, f.db, "admin_1", model.RoleAdmin)
	rejected := testutil.CreateUser(t, f.db, "user_rejected", model.RoleCustomer)
	approved := testutil.CreateUser(t, f.db, "user_approved", model.RoleCustomer)

	rejectedApp, err := f.vendor.Apply(ctx, rejected, &dto.VendorRegisterRequest{Description: "first"})
	require.NoError(t, err)
	approvedApp, err := f.vendor.Apply(ctx, approved, &dto.VendorRegisterRequest{Description: "second"})
	require.NoError(t, err)

	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: rejectedApp.ID, Action: "reject", Reason: "no"})
	require.NoError(t, err)
	first, err := f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: approvedApp.ID, Action: "approve"})
	require.NoError(t, err)

	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: rejectedApp.ID, Action: "approve"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	user, err := f.userRepo.FindByID(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)

	app, err := f.appRepo.FindByID(ctx, nil, rejectedApp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, app.Status)

	_, err = f.vendor.Review(ctx, admin, &dto.ReviewApplicationRequest{ApplicationID: approvedApp.ID, Action: "approve"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	app, err = f.appRepo.FindByID(ctx, nil, approvedApp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, app.Status)
	require.NotNil(t, app.ReviewedAt)
	assert.True(t, first.ReviewedAt.Equal(*app.ReviewedAt))
}
