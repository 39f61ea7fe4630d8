package handler

import (
	"net/http"

	"buybizz/internal/dto"
	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type VendorHandler struct {
	vendorService service.VendorService
}

func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
	}
}

func (h *VendorHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VendorRegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.vendorService.Register(ctx, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (h *VendorHandler) Apply(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VendorRegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	app, err := h.vendorService.Apply(ctx, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"application": app,
	})
}

func (h *VendorHandler) Agents(c echo.Context) error {
	ctx := c.Request().Context()

	var page dto.PageQuery
	if err := pageParams(echo.QueryParamsBinder(c), &page).BindError(); err != nil {
		return err
	}

	resp, err := h.vendorService.Products(ctx, middleware.CurrentUser(c), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *VendorHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.vendorService.Stats(ctx, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}
