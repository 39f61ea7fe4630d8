package handler

import (
	"net/http"

	"buybizz/internal/dto"
	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService  service.AdminService
	vendorService service.VendorService
}

func NewAdminHandler(adminService service.AdminService, vendorService service.VendorService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		vendorService: vendorService,
	}
}

func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.adminService.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.UserFilter
	err := pageParams(echo.QueryParamsBinder(c), &filter.PageQuery).
		String("role", &filter.Role).
		String("search", &filter.Search).
		BindError()
	if err != nil {
		return err
	}

	resp, err := h.adminService.Users(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Agents(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	resp, err := h.adminService.Products(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) Orders(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.OrderFilter
	err := pageParams(echo.QueryParamsBinder(c), &filter.PageQuery).
		String("status", &filter.Status).
		BindError()
	if err != nil {
		return err
	}

	resp, err := h.adminService.Orders(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ChangeRole(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.adminService.ChangeRole(ctx, middleware.CurrentUser(c), c.Param("id"), req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

func (h *AdminHandler) VendorApplications(c echo.Context) error {
	ctx := c.Request().Context()

	var filter dto.ApplicationFilter
	if err := echo.QueryParamsBinder(c).String("status", &filter.Status).BindError(); err != nil {
		return err
	}

	apps, err := h.vendorService.ListApplications(ctx, filter.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"applications": apps,
	})
}

func (h *AdminHandler) ReviewVendorApplication(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ReviewApplicationRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	app, err := h.vendorService.Review(ctx, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"application": app,
	})
}
