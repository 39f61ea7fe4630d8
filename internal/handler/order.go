package handler

import (
	"net/http"

	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Checkout buys everything in the caller's cart. Payment is not collected.
func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.Checkout(ctx, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.List(ctx, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.Get(ctx, middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
