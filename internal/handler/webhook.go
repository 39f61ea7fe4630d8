package handler

import (
	"io"
	"net/http"

	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Identity receives user lifecycle events. The body must reach the verifier
// byte for byte, so it is read raw rather than bound.
func (h *WebhookHandler) Identity(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	if err := h.webhookService.HandleIdentityWebhook(ctx, c.Request().Header, body); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{
		"received": true,
	})
}
