package service

import (
	"context"
	"testing"

	"buybizz/internal/model"
	"buybizz/internal/repository"
	"buybizz/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db *gorm.DB

	userRepo         repository.UserRepository
	productRepo      repository.ProductRepository
	cartRepo         repository.CartRepository
	orderRepo        repository.OrderRepository
	entitlementRepo  repository.EntitlementRepository
	appRepo          repository.VendorApplicationRepository
	reportRepo       repository.ReportRepository
	webhookEventRepo repository.WebhookEventRepository

	identity    IdentityService
	product     ProductService
	cart        CartService
	order       OrderService
	entitlement EntitlementService
	vendor      VendorService
	admin       AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:               db,
		userRepo:         repository.NewUserRepository(db),
		productRepo:      repository.NewProductRepository(db),
		cartRepo:         repository.NewCartRepository(db),
		orderRepo:        repository.NewOrderRepository(db),
		entitlementRepo:  repository.NewEntitlementRepository(db),
		appRepo:          repository.NewVendorApplicationRepository(db),
		reportRepo:       repository.NewReportRepository(db),
		webhookEventRepo: repository.NewWebhookEventRepository(db),
	}

	f.identity = NewIdentityService(f.userRepo)
	f.product = NewProductService(f.productRepo)
	f.cart = NewCartService(f.cartRepo, f.productRepo)
	f.order = NewOrderService(db, f.userRepo, f.cartRepo, f.orderRepo, f.entitlementRepo)
	f.entitlement = NewEntitlementService(f.entitlementRepo, f.orderRepo)
	f.vendor = NewVendorService(db, f.userRepo, f.appRepo, f.productRepo, f.reportRepo)
	f.admin = NewAdminService(f.userRepo, f.productRepo, f.orderRepo, f.appRepo, f.reportRepo)
	return f
}

func (f *fixture) addToCart(t *testing.T, user *model.User, product *model.Product, qty int) *model.CartItem {
	t.Helper()

	item, err := f.cart.AddItem(context.Background(), user, product.ID, qty)
	require.NoError(t, err)
	return item
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}
