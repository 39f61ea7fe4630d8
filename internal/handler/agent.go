package handler

import (
	"net/http"

	"buybizz/internal/dto"
	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type AgentHandler struct {
	productService service.ProductService
}

func NewAgentHandler(productService service.ProductService) *AgentHandler {
	return &AgentHandler{
		productService: productService,
	}
}

func (h *AgentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	resp, err := h.productService.List(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AgentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agent": product,
	})
}

func (h *AgentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	product, err := h.productService.Create(ctx, middleware.CurrentUser(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"agent": product,
	})
}

func (h *AgentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	product, err := h.productService.Update(ctx, middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agent": product,
	})
}

func (h *AgentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.productService.Delete(ctx, middleware.CurrentUser(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}
