package service

import (
	"context"
	"errors"
	"fmt"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	AddItem(ctx context.Context, user *model.User, productID string, quantity int) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, user *model.User, itemID string, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, user *model.User, itemID string) error
	List(ctx context.Context, user *model.User) (*dto.CartResponse, error)
	Clear(ctx context.Context, user *model.User) error
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, user *model.User, productID string, quantity int) (*model.CartItem, error) {
	if productID == "" {
		return nil, apperror.Validation("agentId is required")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "agent")
	}
	if !product.Active() {
		return nil, ErrProductUnavailable.WithDetails([]dto.UnavailableProduct{
			{ID: product.ID, Name: product.Name, Status: product.Status},
		})
	}

	existing, err := s.cartRepo.FindByUserAndProduct(ctx, user.ID, product.ID)
	switch {
	case err == nil:
		if err := validateQuantity(existing.Quantity + quantity); err != nil {
			return nil, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find cart line: %w", err)
	}

	item, err := s.cartRepo.AddQuantity(ctx, user.ID, product.ID, quantity)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, user *model.User, itemID string, quantity int) (*model.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.ownedItem(ctx, user, itemID); err != nil {
		return nil, err
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, notFound(err, "cart item")
	}

	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, user *model.User, itemID string) error {
	if _, err := s.ownedItem(ctx, user, itemID); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(ctx, itemID); err != nil {
		return notFound(err, "cart item")
	}
	return nil
}

func (s *cartServiceImpl) List(ctx context.Context, user *model.User) (*dto.CartResponse, error) {
	items, err := s.cartRepo.ListByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	resp := &dto.CartResponse{
		Items:    items,
		Subtotal: decimal.Zero,
	}
	if resp.Items == nil {
		resp.Items = []*model.CartItem{}
	}
	for _, item := range items {
		resp.ItemCount += item.Quantity
		if item.Product != nil {
			resp.Subtotal = resp.Subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return resp, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, user *model.User) error {
	if _, err := s.cartRepo.ClearByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ownedItem loads the line and rejects it unless it belongs to user.
func (s *cartServiceImpl) ownedItem(ctx context.Context, user *model.User, itemID string) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	if item.UserID != user.ID {
		return nil, apperror.Forbidden("Forbidden: cart item belongs to another user")
	}
	return item, nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}
	if quantity > model.MaxLineQuantity {
		return apperror.Validation(fmt.Sprintf("quantity cannot exceed %d per agent", model.MaxLineQuantity))
	}
	return nil
}
