package handler

import (
	"net/http"

	"buybizz/internal/apperror"
	"buybizz/internal/dto"
	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.List(ctx, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.AddItem(ctx, middleware.CurrentUser(c), req.AgentID, quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"cartItem": item,
	})
}

func (h *CartHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return apperror.Validation("quantity is required")
	}

	item, err := h.cartService.UpdateQuantity(ctx, middleware.CurrentUser(c), c.Param("id"), *req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cartItem": item,
	})
}

func (h *CartHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.RemoveItem(ctx, middleware.CurrentUser(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.Clear(ctx, middleware.CurrentUser(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}
