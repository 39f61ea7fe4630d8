package service

import (
	"context"
	"fmt"
	"strings"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StatusAll disables the storefront's default ACTIVE filter.
const StatusAll = "ALL"

type ProductService interface {
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, productID string) (*model.Product, error)
	Create(ctx context.Context, vendor *model.User, req *dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, vendor *model.User, productID string, req *dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, vendor *model.User, productID string) error
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
	}
}

func (s *productServiceImpl) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	filter.PageQuery = filter.PageQuery.Normalize()

	status, err := normalizeStatusFilter(filter.Status, model.ProductActive)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if products == nil {
		products = []*model.Product{}
	}

	return &dto.ProductListResponse{
		Agents:     products,
		Pagination: dto.NewPagination(filter.PageQuery, total),
	}, nil
}

func (s *productServiceImpl) Get(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "agent")
	}
	return product, nil
}

func (s *productServiceImpl) Create(ctx context.Context, vendor *model.User, req *dto.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req, true); err != nil {
		return nil, err
	}

	product := &model.Product{
		VendorID:         vendor.ID,
		Name:             strings.TrimSpace(*req.Name),
		Description:      strings.TrimSpace(*req.Description),
		ShortDescription: trimmed(req.ShortDescription),
		Price:            req.Price.Round(2),
		Category:         strings.TrimSpace(*req.Category),
		Tags:             cleanList(req.Tags),
		Features:         cleanList(req.Features),
		ImageURL:         trimmed(req.ImageURL),
		DemoURL:          trimmed(req.DemoURL),
		DocsURL:          trimmed(req.DocsURL),
		Status:           model.ProductActive,
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = decimal.NewNullDecimal(req.OriginalPrice.Round(2))
	}
	if req.Status != nil {
		product.Status, _ = model.ParseProductStatus(*req.Status)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return s.Get(ctx, product.ID)
}

func (s *productServiceImpl) Update(ctx context.Context, vendor *model.User, productID string, req *dto.ProductRequest) (*model.Product, error) {
	if _, err := s.ownedProduct(ctx, vendor, productID); err != nil {
		return nil, err
	}
	if err := validateProductRequest(req, false); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ShortDescription != nil {
		updates["short_description"] = trimmed(req.ShortDescription)
	}
	if req.Price != nil {
		updates["price"] = req.Price.Round(2)
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = decimal.NewNullDecimal(req.OriginalPrice.Round(2))
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		updates["tags"] = cleanList(req.Tags)
	}
	if req.Features != nil {
		updates["features"] = cleanList(req.Features)
	}
	if req.ImageURL != nil {
		updates["image_url"] = trimmed(req.ImageURL)
	}
	if req.DemoURL != nil {
		updates["demo_url"] = trimmed(req.DemoURL)
	}
	if req.DocsURL != nil {
		updates["docs_url"] = trimmed(req.DocsURL)
	}
	if req.Status != nil {
		status, _ := model.ParseProductStatus(*req.Status)
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.productRepo.Update(ctx, productID, updates); err != nil {
			return nil, notFound(err, "agent")
		}
	}
	return s.Get(ctx, productID)
}

func (s *productServiceImpl) Delete(ctx context.Context, vendor *model.User, productID string) error {
	if _, err := s.ownedProduct(ctx, vendor, productID); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return notFound(err, "agent")
	}
	return nil
}

func (s *productServiceImpl) ownedProduct(ctx context.Context, vendor *model.User, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "agent")
	}
	if product.VendorID != vendor.ID {
		return nil, apperror.Forbidden("Forbidden: you do not own this agent")
	}
	return product, nil
}

// validateProductRequest checks present fields; full additionally requires
// the fields a new listing cannot do without.
func validateProductRequest(req *dto.ProductRequest, full bool) error {
	if req == nil {
		return apperror.Validation("request body is required")
	}

	var missing []string
	if full {
		if blank(req.Name) {
			missing = append(missing, "name")
		}
		if blank(req.Description) {
			missing = append(missing, "description")
		}
		if blank(req.Category) {
			missing = append(missing, "category")
		}
		if req.Price == nil {
			missing = append(missing, "price")
		}
	} else {
		if req.Name != nil && blank(req.Name) {
			missing = append(missing, "name")
		}
		if req.Description != nil && blank(req.Description) {
			missing = append(missing, "description")
		}
		if req.Category != nil && blank(req.Category) {
			missing = append(missing, "category")
		}
	}
	if len(missing) > 0 {
		return apperror.Validation("missing required fields").WithDetails(missing)
	}

	if req.Price != nil && !req.Price.IsPositive() {
		return apperror.Validation("price must be greater than zero")
	}
	if req.OriginalPrice != nil && !req.OriginalPrice.IsPositive() {
		return apperror.Validation("originalPrice must be greater than zero")
	}
	if req.Status != nil {
		if _, ok := model.ParseProductStatus(*req.Status); !ok {
			return apperror.Validation("status must be ACTIVE or INACTIVE")
		}
	}
	return nil
}

// normalizeStatusFilter maps "" to def and "ALL" to no filter.
func normalizeStatusFilter(raw string, def model.ProductStatus) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return string(def), nil
	}
	if strings.EqualFold(raw, StatusAll) {
		return "", nil
	}
	status, ok := model.ParseProductStatus(raw)
	if !ok {
		return "", apperror.Validation("status must be ACTIVE, INACTIVE or ALL")
	}
	return string(status), nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func cleanList(values []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
