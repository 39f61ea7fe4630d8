package service

import (
	"context"
	"fmt"

	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
)

type EntitlementService interface {
	// ListForUser groups the caller's keys by product.
	ListForUser(ctx context.Context, user *model.User) ([]*dto.OwnedProduct, error)
}

type entitlementServiceImpl struct {
	entitlementRepo repository.EntitlementRepository
	orderRepo       repository.OrderRepository
}

func NewEntitlementService(
	entitlementRepo repository.EntitlementRepository,
	orderRepo repository.OrderRepository,
) EntitlementService {
	return &entitlementServiceImpl{
		entitlementRepo: entitlementRepo,
		orderRepo:       orderRepo,
	}
}

type orderProduct struct {
	orderID   string
	productID string
}

// ListForUser attributes spend per seat using the unit price frozen on the
// order item, so an order holding several products is not counted once per
// product.
func (s *entitlementServiceImpl) ListForUser(ctx context.Context, user *model.User) ([]*dto.OwnedProduct, error) {
	entitlements, err := s.entitlementRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}

	orderIDs := make([]string, 0)
	seenOrders := make(map[string]struct{})
	for _, ent := range entitlements {
		if _, ok := seenOrders[ent.OrderID]; !ok {
			seenOrders[ent.OrderID] = struct{}{}
			orderIDs = append(orderIDs, ent.OrderID)
		}
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	unitPrice := make(map[orderProduct]decimal.Decimal, len(items))
	for _, item := range items {
		unitPrice[orderProduct{item.OrderID, item.ProductID}] = item.Price
	}

	owned := make([]*dto.OwnedProduct, 0)
	byProduct := make(map[string]*dto.OwnedProduct)
	productOrders := make(map[string]map[string]struct{})

	for _, ent := range entitlements {
		entry, ok := byProduct[ent.ProductID]
		if !ok {
			entry = &dto.OwnedProduct{
				Product:          ent.Product.Summary(),
				APIKeys:          []string{},
				TotalSpent:       decimal.Zero,
				FirstPurchasedAt: ent.PurchasedAt,
				OrderIDs:         []string{},
			}
			byProduct[ent.ProductID] = entry
			productOrders[ent.ProductID] = make(map[string]struct{})
			owned = append(owned, entry)
		}

		entry.APIKeys = append(entry.APIKeys, ent.APIKey)
		entry.LicenseCount++
		entry.TotalSpent = entry.TotalSpent.Add(unitPrice[orderProduct{ent.OrderID, ent.ProductID}])
		if ent.PurchasedAt.Before(entry.FirstPurchasedAt) {
			entry.FirstPurchasedAt = ent.PurchasedAt
		}
		if _, ok := productOrders[ent.ProductID][ent.OrderID]; !ok {
			productOrders[ent.ProductID][ent.OrderID] = struct{}{}
			entry.OrderIDs = append(entry.OrderIDs, ent.OrderID)
		}
	}

	return owned, nil
}
