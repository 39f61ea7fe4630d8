package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"buybizz/internal/apikey"
	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	// Checkout turns the caller's cart into an order, its line items and one
	// entitlement per purchased unit, then empties the cart. All or nothing.
	Checkout(ctx context.Context, user *model.User) (*dto.OrderResponse, error)
	Get(ctx context.Context, user *model.User, orderID string) (*dto.OrderResponse, error)
	List(ctx context.Context, user *model.User) (*dto.OrderListResponse, error)
}

type orderServiceImpl struct {
	db              *gorm.DB
	userRepo        repository.UserRepository
	cartRepo        repository.CartRepository
	orderRepo       repository.OrderRepository
	entitlementRepo repository.EntitlementRepository
	generateKey     func() (string, error)
}

func NewOrderService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	entitlementRepo repository.EntitlementRepository,
) OrderService {
	return &orderServiceImpl{
		db:              db,
		userRepo:        userRepo,
		cartRepo:        cartRepo,
		orderRepo:       orderRepo,
		entitlementRepo: entitlementRepo,
		generateKey:     apikey.Generate,
	}
}

func (s *orderServiceImpl) Checkout(ctx context.Context, user *model.User) (*dto.OrderResponse, error) {
	items, err := s.cartRepo.ListByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := checkCart(items); err != nil {
		return nil, err
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serializes checkouts of the same user
		if _, err := s.userRepo.LockForUpdate(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		// the cart may have moved since the pre-check; trust only what the
		// lock holder sees
		items, err := s.cartRepo.ListByUser(ctx, tx, user.ID)
		if err != nil {
			return fmt.Errorf("reload cart: %w", err)
		}
		if err := checkCart(items); err != nil {
			return err
		}

		order, err = s.fulfill(ctx, tx, user.ID, items)
		return err
	})
	if err != nil {
		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			slog.ErrorContext(ctx, "checkout rolled back", "user_id", user.ID, "error", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "order created", "order_id", order.ID, "user_id", user.ID, "amount", order.Amount.StringFixed(2))
	return s.Get(ctx, user, order.ID)
}

// fulfill writes the order, line items and entitlements and clears exactly
// the cart lines it was given. Must run inside tx.
func (s *orderServiceImpl) fulfill(ctx context.Context, tx *gorm.DB, userID string, items []*model.CartItem) (*model.Order, error) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := &model.Order{
		UserID: userID,
		Amount: total,
		Status: model.OrderPending,
	}
	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	orderItems := make([]*model.OrderItem, 0, len(items))
	var entitlements []*model.Entitlement
	purchasedAt := time.Now().UTC()
	itemIDs := make([]string, 0, len(items))

	for _, item := range items {
		orderItems = append(orderItems, &model.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
		})

		for unit := 0; unit < item.Quantity; unit++ {
			key, err := s.generateKey()
			if err != nil {
				return nil, fmt.Errorf("generate api key: %w", err)
			}
			entitlements = append(entitlements, &model.Entitlement{
				UserID:      userID,
				ProductID:   item.ProductID,
				OrderID:     order.ID,
				APIKey:      key,
				PurchasedAt: purchasedAt,
			})
		}
		itemIDs = append(itemIDs, item.ID)
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		return nil, fmt.Errorf("store order items: %w", err)
	}
	if err := s.entitlementRepo.CreateMany(ctx, tx, entitlements); err != nil {
		return nil, fmt.Errorf("store entitlements: %w", err)
	}

	deleted, err := s.cartRepo.DeleteItems(ctx, tx, userID, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	if deleted != int64(len(itemIDs)) {
		return nil, ErrCartChanged
	}

	return order, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, user *model.User, orderID string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.UserID != user.ID {
		return nil, apperror.NotFound("order")
	}

	entitlements, err := s.entitlementRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order entitlements: %w", err)
	}

	keys := make(map[string][]string, len(order.Items))
	for _, ent := range entitlements {
		keys[ent.ProductID] = append(keys[ent.ProductID], ent.APIKey)
	}

	resp := &dto.OrderResponse{
		Order:    order,
		Products: make([]*dto.OrderProductKeys, 0, len(order.Items)),
	}
	for i := range order.Items {
		item := &order.Items[i]
		productKeys := keys[item.ProductID]
		if productKeys == nil {
			productKeys = []string{}
		}
		resp.Products = append(resp.Products, &dto.OrderProductKeys{
			Product:  item.Product.Summary(),
			Quantity: item.Quantity,
			Price:    item.Price,
			APIKeys:  productKeys,
		})
	}
	return resp, nil
}

func (s *orderServiceImpl) List(ctx context.Context, user *model.User) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return &dto.OrderListResponse{Orders: orders}, nil
}

// checkCart enforces the checkout preconditions: something to buy, lines
// within the quantity cap, and nothing that has been pulled from sale.
func checkCart(items []*model.CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}

	var unavailable []dto.UnavailableProduct
	for _, item := range items {
		if err := validateQuantity(item.Quantity); err != nil {
			return err
		}
		if item.Product == nil {
			unavailable = append(unavailable, dto.UnavailableProduct{ID: item.ProductID})
			continue
		}
		if !item.Product.Active() {
			unavailable = append(unavailable, dto.UnavailableProduct{
				ID:     item.Product.ID,
				Name:   item.Product.Name,
				Status: item.Product.Status,
			})
		}
	}
	if len(unavailable) > 0 {
		return ErrProductUnavailable.WithDetails(unavailable)
	}
	return nil
}
