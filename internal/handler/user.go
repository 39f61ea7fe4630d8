package handler

import (
	"net/http"

	"buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	entitlementService service.EntitlementService
}

func NewUserHandler(entitlementService service.EntitlementService) *UserHandler {
	return &UserHandler{
		entitlementService: entitlementService,
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": middleware.CurrentUser(c),
	})
}

// OwnedAgents lists the agents the caller holds keys for.
func (h *UserHandler) OwnedAgents(c echo.Context) error {
	ctx := c.Request().Context()

	owned, err := h.entitlementService.ListForUser(ctx, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents": owned,
	})
}
