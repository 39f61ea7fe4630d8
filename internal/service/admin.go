package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/model"
	"buybizz/internal/repository"

	"golang.org/x/sync/errgroup"
)

const topN = 5

type AdminService interface {
	Stats(ctx context.Context) (*dto.AdminStats, error)
	Users(ctx context.Context, filter dto.UserFilter) (*dto.UserListResponse, error)
	Products(ctx context.Context, filter dto.ProductFilter) (*dto.AdminProductListResponse, error)
	Orders(ctx context.Context, filter dto.OrderFilter) (*dto.AdminOrderListResponse, error)
	ChangeRole(ctx context.Context, admin *model.User, userID string, role string) (*model.User, error)
}

type adminServiceImpl struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	appRepo     repository.VendorApplicationRepository
	reportRepo  repository.ReportRepository
	now         func() time.Time
}

func NewAdminService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	appRepo repository.VendorApplicationRepository,
	reportRepo repository.ReportRepository,
) AdminService {
	return &adminServiceImpl{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		appRepo:     appRepo,
		reportRepo:  reportRepo,
		now:         time.Now,
	}
}

// Stats runs the independent aggregations side by side.
func (s *adminServiceImpl) Stats(ctx context.Context) (*dto.AdminStats, error) {
	stats := &dto.AdminStats{}
	current, previous := monthRanges(s.now())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.UsersByRole, err = s.userRepo.CountByRole(gctx)
		return wrap(err, "count users")
	})
	g.Go(func() (err error) {
		stats.ProductsByStatus, err = s.productRepo.CountByStatus(gctx, "")
		return wrap(err, "count agents")
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.reportRepo.CountOrders(gctx)
		return wrap(err, "count orders")
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.reportRepo.OrderRevenue(gctx, repository.TimeRange{})
		return wrap(err, "total revenue")
	})
	g.Go(func() (err error) {
		stats.MonthRevenue, err = s.reportRepo.OrderRevenue(gctx, current)
		return wrap(err, "month revenue")
	})
	g.Go(func() (err error) {
		stats.LastMonthRevenue, err = s.reportRepo.OrderRevenue(gctx, previous)
		return wrap(err, "last month revenue")
	})
	g.Go(func() (err error) {
		stats.PendingVendorApplications, err = s.appRepo.CountByStatus(gctx, model.ApplicationPending)
		return wrap(err, "count pending applications")
	})
	g.Go(func() error {
		rows, err := s.reportRepo.TopVendors(gctx, topN)
		stats.TopVendors = ranked(rows)
		return wrap(err, "top vendors")
	})
	g.Go(func() error {
		rows, err := s.reportRepo.TopProducts(gctx, topN)
		stats.TopProducts = ranked(rows)
		return wrap(err, "top agents")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range stats.UsersByRole {
		stats.TotalUsers += n
	}
	for _, n := range stats.ProductsByStatus {
		stats.TotalProducts += n
	}
	stats.GrowthPercent = GrowthPercent(stats.MonthRevenue, stats.LastMonthRevenue)
	return stats, nil
}

func (s *adminServiceImpl) Users(ctx context.Context, filter dto.UserFilter) (*dto.UserListResponse, error) {
	filter.PageQuery = filter.PageQuery.Normalize()
	if filter.Role != "" {
		role, ok := model.ParseRole(filter.Role)
		if !ok {
			return nil, apperror.Validation("role must be CUSTOMER, VENDOR or ADMIN")
		}
		filter.Role = string(role)
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return &dto.UserListResponse{Users: users, Pagination: dto.NewPagination(filter.PageQuery, total)}, nil
}

func (s *adminServiceImpl) Products(ctx context.Context, filter dto.ProductFilter) (*dto.AdminProductListResponse, error) {
	filter.PageQuery = filter.PageQuery.Normalize()
	status, err := normalizeStatusFilter(filter.Status, "")
	if err != nil {
		return nil, err
	}
	filter.Status = status

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	withSales, err := attachSales(ctx, s.reportRepo, products)
	if err != nil {
		return nil, err
	}
	return &dto.AdminProductListResponse{Agents: withSales, Pagination: dto.NewPagination(filter.PageQuery, total)}, nil
}

func (s *adminServiceImpl) Orders(ctx context.Context, filter dto.OrderFilter) (*dto.AdminOrderListResponse, error) {
	filter.PageQuery = filter.PageQuery.Normalize()
	if filter.Status != "" {
		status := model.OrderStatus(strings.ToUpper(filter.Status))
		switch status {
		case model.OrderPending, model.OrderCompleted, model.OrderFailed:
			filter.Status = string(status)
		default:
			return nil, apperror.Validation("status must be PENDING, COMPLETED or FAILED")
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return &dto.AdminOrderListResponse{Orders: orders, Pagination: dto.NewPagination(filter.PageQuery, total)}, nil
}

func (s *adminServiceImpl) ChangeRole(ctx context.Context, admin *model.User, userID string, role string) (*model.User, error) {
	newRole, ok := model.ParseRole(role)
	if !ok {
		return nil, apperror.Validation("role must be CUSTOMER, VENDOR or ADMIN")
	}
	if userID == admin.ID && newRole != model.RoleAdmin {
		return nil, apperror.Conflict("SelfDemotion", "admins cannot remove their own admin role")
	}

	if err := s.userRepo.UpdateRole(ctx, nil, userID, newRole, nil); err != nil {
		return nil, notFound(err, "user")
	}

	slog.InfoContext(ctx, "user role changed", "user_id", userID, "role", newRole, "admin_id", admin.ID)
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func ranked(rows []repository.SalesRow) []dto.RankedEntry {
	out := make([]dto.RankedEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.RankedEntry{ID: row.ID, Name: row.Name, Revenue: row.Revenue, Units: row.Units})
	}
	return out
}

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
