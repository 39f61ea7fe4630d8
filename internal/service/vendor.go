package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendorService interface {
	// Register upgrades the caller to vendor straight away, leaving an
	// approved application behind as the record.
	Register(ctx context.Context, user *model.User, req *dto.VendorRegisterRequest) (*model.User, error)
	// Apply files an application for an admin to review.
	Apply(ctx context.Context, user *model.User, req *dto.VendorRegisterRequest) (*model.VendorApplication, error)
	Review(ctx context.Context, admin *model.User, req *dto.ReviewApplicationRequest) (*model.VendorApplication, error)
	ListApplications(ctx context.Context, status string) ([]*model.VendorApplication, error)
	Products(ctx context.Context, vendor *model.User, page dto.PageQuery) (*dto.AdminProductListResponse, error)
	Stats(ctx context.Context, vendor *model.User) (*dto.VendorStats, error)
}

type vendorServiceImpl struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	appRepo     repository.VendorApplicationRepository
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
	now         func() time.Time
}

func NewVendorService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	appRepo repository.VendorApplicationRepository,
	productRepo repository.ProductRepository,
	reportRepo repository.ReportRepository,
) VendorService {
	return &vendorServiceImpl{
		db:          db,
		userRepo:    userRepo,
		appRepo:     appRepo,
		productRepo: productRepo,
		reportRepo:  reportRepo,
		now:         time.Now,
	}
}

func (s *vendorServiceImpl) Register(ctx context.Context, user *model.User, req *dto.VendorRegisterRequest) (*model.User, error) {
	if user.Role != model.RoleCustomer {
		return nil, apperror.Conflict("AlreadyVendor", fmt.Sprintf("user with role %s cannot register as vendor", user.Role))
	}
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return nil, apperror.Validation("companyName is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now().UTC()
		app := &model.VendorApplication{
			UserID:      user.ID,
			CompanyName: &company,
			Description: strings.TrimSpace(req.Description),
			Status:      model.ApplicationApproved,
			ReviewedBy:  &user.ID,
			ReviewedAt:  &now,
		}
		if err := s.appRepo.Create(ctx, tx, app); err != nil {
			return fmt.Errorf("store vendor application: %w", err)
		}
		if err := s.userRepo.UpdateRole(ctx, tx, user.ID, model.RoleVendor, &company); err != nil {
			return fmt.Errorf("promote user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user")
	}

	slog.InfoContext(ctx, "vendor registered", "user_id", user.ID)
	return s.userRepo.FindByID(ctx, user.ID)
}

func (s *vendorServiceImpl) Apply(ctx context.Context, user *model.User, req *dto.VendorRegisterRequest) (*model.VendorApplication, error) {
	if user.Role != model.RoleCustomer {
		return nil, apperror.Conflict("AlreadyVendor", fmt.Sprintf("user with role %s cannot apply as vendor", user.Role))
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperror.Validation("description is required")
	}

	_, err := s.appRepo.FindPendingByUser(ctx, user.ID)
	if err == nil {
		return nil, apperror.Conflict("ApplicationPending", "an application is already awaiting review")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find pending application: %w", err)
	}

	app := &model.VendorApplication{
		UserID:      user.ID,
		Description: description,
		Status:      model.ApplicationPending,
	}
	if company := strings.TrimSpace(req.CompanyName); company != "" {
		app.CompanyName = &company
	}
	if err := s.appRepo.Create(ctx, nil, app); err != nil {
		return nil, fmt.Errorf("store vendor application: %w", err)
	}
	return app, nil
}

func (s *vendorServiceImpl) Review(ctx context.Context, admin *model.User, req *dto.ReviewApplicationRequest) (*model.VendorApplication, error) {
	var status model.ApplicationStatus
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		status = model.ApplicationApproved
	case "reject":
		status = model.ApplicationRejected
	default:
		return nil, apperror.Validation("action must be approve or reject")
	}
	if req.ApplicationID == "" {
		return nil, apperror.Validation("applicationId is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByID(ctx, tx, req.ApplicationID)
		if err != nil {
			return notFound(err, "vendor application")
		}
		if app.Status != model.ApplicationPending {
			return ErrAlreadyReviewed
		}

		var reason *string
		if status == model.ApplicationRejected {
			r := strings.TrimSpace(req.Reason)
			reason = &r
		}

		// the status guard in the update makes a concurrent second review
		// a no-op
		ok, err := s.appRepo.Review(ctx, tx, app.ID, status, admin.ID, reason)
		if err != nil {
			return fmt.Errorf("review application: %w", err)
		}
		if !ok {
			return ErrAlreadyReviewed
		}

		if status == model.ApplicationApproved {
			if err := s.userRepo.UpdateRole(ctx, tx, app.UserID, model.RoleVendor, app.CompanyName); err != nil {
				return fmt.Errorf("promote applicant: %w", notFound(err, "user"))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "vendor application reviewed", "application_id", req.ApplicationID, "status", status, "admin_id", admin.ID)
	return s.appRepo.FindByID(ctx, nil, req.ApplicationID)
}

func (s *vendorServiceImpl) ListApplications(ctx context.Context, status string) ([]*model.VendorApplication, error) {
	st := model.ApplicationStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case "", model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected:
	default:
		return nil, apperror.Validation("status must be PENDING, APPROVED or REJECTED")
	}

	apps, err := s.appRepo.List(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("list vendor applications: %w", err)
	}
	if apps == nil {
		apps = []*model.VendorApplication{}
	}
	return apps, nil
}

func (s *vendorServiceImpl) Products(ctx context.Context, vendor *model.User, page dto.PageQuery) (*dto.AdminProductListResponse, error) {
	page = page.Normalize()
	products, total, err := s.productRepo.List(ctx, dto.ProductFilter{PageQuery: page, VendorID: vendor.ID})
	if err != nil {
		return nil, fmt.Errorf("list vendor agents: %w", err)
	}

	withSales, err := attachSales(ctx, s.reportRepo, products)
	if err != nil {
		return nil, err
	}
	return &dto.AdminProductListResponse{
		Agents:     withSales,
		Pagination: dto.NewPagination(page, total),
	}, nil
}

func (s *vendorServiceImpl) Stats(ctx context.Context, vendor *model.User) (*dto.VendorStats, error) {
	counts, err := s.productRepo.CountByStatus(ctx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("count vendor agents: %w", err)
	}

	all, err := s.reportRepo.VendorSales(ctx, vendor.ID, repository.TimeRange{})
	if err != nil {
		return nil, fmt.Errorf("vendor sales: %w", err)
	}
	current, previous := monthRanges(s.now())
	thisMonth, err := s.reportRepo.VendorSales(ctx, vendor.ID, current)
	if err != nil {
		return nil, fmt.Errorf("vendor sales this month: %w", err)
	}
	lastMonth, err := s.reportRepo.VendorSales(ctx, vendor.ID, previous)
	if err != nil {
		return nil, fmt.Errorf("vendor sales last month: %w", err)
	}

	return &dto.VendorStats{
		TotalProducts:    counts[model.ProductActive] + counts[model.ProductInactive],
		ActiveProducts:   counts[model.ProductActive],
		UnitsSold:        all.Units,
		TotalRevenue:     all.Revenue,
		MonthRevenue:     thisMonth.Revenue,
		LastMonthRevenue: lastMonth.Revenue,
		GrowthPercent:    GrowthPercent(thisMonth.Revenue, lastMonth.Revenue),
	}, nil
}

func attachSales(ctx context.Context, reportRepo repository.ReportRepository, products []*model.Product) ([]*dto.VendorProductStats, error) {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	sales, err := reportRepo.ProductSales(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("product sales: %w", err)
	}

	out := make([]*dto.VendorProductStats, len(products))
	for i, p := range products {
		row, ok := sales[p.ID]
		if !ok {
			row.Revenue = decimal.Zero
		}
		out[i] = &dto.VendorProductStats{Product: p, UnitsSold: row.Units, Revenue: row.Revenue}
	}
	return out, nil
}
