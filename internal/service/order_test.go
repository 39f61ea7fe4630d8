package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"buybizz/internal/apikey"
	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	triage := testutil.CreateProduct(t, f.db, vendor, "Triage", "30.00")

	f.addToCart(t, buyer, writer, 2)
	f.addToCart(t, buyer, triage, 1)

	resp, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	assert.Equal(t, "130.00", resp.Order.Amount.StringFixed(2))
	assert.Equal(t, model.OrderPending, resp.Order.Status)
	require.Len(t, resp.Products, 2)

	keys := 0
	for _, p := range resp.Products {
		assert.Len(t, p.APIKeys, p.Quantity)
		for _, key := range p.APIKeys {
			assert.True(t, apikey.Validate(key), key)
		}
		keys += len(p.APIKeys)
	}
	assert.Equal(t, 3, keys)

	assert.EqualValues(t, 3, f.count(t, &model.Entitlement{}))
	assert.EqualValues(t, 2, f.count(t, &model.OrderItem{}))
	assert.EqualValues(t, 0, f.count(t, &model.CartItem{}))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)

	_, err := f.order.Checkout(context.Background(), buyer)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.EqualValues(t, 0, f.count(t, &model.Order{}))
}

func TestCheckout_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	f.addToCart(t, buyer, writer, 1)

	require.NoError(t, f.productRepo.Update(ctx, writer.ID, map[string]interface{}{"status": model.ProductInactive}))

	_, err := f.order.Checkout(ctx, buyer)
	require.ErrorIs(t, err, ErrProductUnavailable)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	details, ok := appErr.Details.([]dto.UnavailableProduct)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, writer.ID, details[0].ID)
	assert.Equal(t, model.ProductInactive, details[0].Status)

	assert.EqualValues(t, 0, f.count(t, &model.Order{}))
	assert.EqualValues(t, 1, f.count(t, &model.CartItem{}))
}

func TestCheckout_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	triage := testutil.CreateProduct(t, f.db, vendor, "Triage", "30.00")
	f.addToCart(t, buyer, writer, 2)
	f.addToCart(t, buyer, triage, 1)

	calls := 0
	f.order.(*orderServiceImpl).generateKey = func() (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("entropy exhausted")
		}
		return apikey.Generate()
	}

	_, err := f.order.Checkout(ctx, buyer)
	require.Error(t, err)

	assert.EqualValues(t, 0, f.count(t, &model.Order{}))
	assert.EqualValues(t, 0, f.count(t, &model.OrderItem{}))
	assert.EqualValues(t, 0, f.count(t, &model.Entitlement{}))
	assert.EqualValues(t, 2, f.count(t, &model.CartItem{}))
}

func TestCheckout_DuplicateKeyRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	f.addToCart(t, buyer, writer, 2)

	key, err := apikey.Generate()
	require.NoError(t, err)
	f.order.(*orderServiceImpl).generateKey = func() (string, error) { return key, nil }

	_, err = f.order.Checkout(ctx, buyer)
	require.Error(t, err)

	assert.EqualValues(t, 0, f.count(t, &model.Order{}))
	assert.EqualValues(t, 0, f.count(t, &model.Entitlement{}))
	assert.EqualValues(t, 1, f.count(t, &model.CartItem{}))
}

func TestCheckout_ConcurrentRequestsBuyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	f.addToCart(t, buyer, writer, 2)

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.order.Checkout(ctx, buyer)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrCartChanged), err)
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, f.count(t, &model.Order{}))
	assert.EqualValues(t, 2, f.count(t, &model.Entitlement{}))
}

func TestOrderGet_OtherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	other := testutil.CreateUser(t, f.db, "buyer_2", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	f.addToCart(t, buyer, writer, 1)

	resp, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	_, err = f.order.Get(ctx, other, resp.Order.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	own, err := f.order.Get(ctx, buyer, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Order.ID, own.Order.ID)

	list, err := f.order.List(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestListForUser_SpendIsPerSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	triage := testutil.CreateProduct(t, f.db, vendor, "Triage", "30.00")

	f.addToCart(t, buyer, writer, 2)
	f.addToCart(t, buyer, triage, 1)
	first, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	f.addToCart(t, buyer, writer, 1)
	second, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)

	owned, err := f.entitlement.ListForUser(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, owned, 2)

	byName := map[string]*dto.OwnedProduct{}
	for _, o := range owned {
		byName[o.Product.Name] = o
	}

	w := byName["Writer"]
	require.NotNil(t, w)
	assert.Equal(t, 3, w.LicenseCount)
	assert.Len(t, w.APIKeys, 3)
	assert.Equal(t, "150.00", w.TotalSpent.StringFixed(2))
	assert.ElementsMatch(t, []string{first.Order.ID, second.Order.ID}, w.OrderIDs)

	tr := byName["Triage"]
	require.NotNil(t, tr)
	assert.Equal(t, 1, tr.LicenseCount)
	assert.Equal(t, "30.00", tr.TotalSpent.StringFixed(2))
	assert.Equal(t, []string{first.Order.ID}, tr.OrderIDs)
}

func TestCheckout_QuantityAboveOneInsertBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "1.00")
	triage := testutil.CreateProduct(t, f.db, vendor, "Triage", "2.00")

	f.addToCart(t, buyer, writer, model.MaxLineQuantity)
	f.addToCart(t, buyer, triage, 1)

	resp, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "1002.00", resp.Order.Amount.StringFixed(2))
	assert.EqualValues(t, model.MaxLineQuantity+1, f.count(t, &model.Entitlement{}))
	assert.EqualValues(t, 0, f.count(t, &model.CartItem{}))
}

func TestCheckout_RejectsLineAboveCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "1.00")
	item := f.addToCart(t, buyer, writer, 1)

	// written behind the service's back, as a racing add could
	require.NoError(t, f.cartRepo.UpdateQuantity(ctx, item.ID, model.MaxLineQuantity+1))

	_, err := f.order.Checkout(ctx, buyer)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.EqualValues(t, 0, f.count(t, &model.Order{}))
}

func TestCheckout_FreezesCurrentPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vendor := testutil.CreateUser(t, f.db, "vendor_1", model.RoleVendor)
	buyer := testutil.CreateUser(t, f.db, "buyer_1", model.RoleCustomer)
	writer := testutil.CreateProduct(t, f.db, vendor, "Writer", "50.00")
	f.addToCart(t, buyer, writer, 2)

	// the cart holds no price; checkout charges what the agent costs now
	require.NoError(t, f.productRepo.Update(ctx, writer.ID, map[string]interface{}{"price": decimal.RequireFromString("60.00")}))

	resp, err := f.order.Checkout(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "120.00", resp.Order.Amount.StringFixed(2))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "60.00", resp.Products[0].Price.StringFixed(2))

	require.NoError(t, f.productRepo.Update(ctx, writer.ID, map[string]interface{}{"price": decimal.RequireFromString("99.00")}))

	stored, err := f.order.Get(ctx, buyer, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.00", stored.Order.Amount.StringFixed(2))
	require.Len(t, stored.Order.Items, 1)
	assert.Equal(t, "60.00", stored.Order.Items[0].Price.StringFixed(2))

	owned, err := f.entitlement.ListForUser(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "120.00", owned[0].TotalSpent.StringFixed(2))
}
