package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"buybizz/internal/apperror"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// errorHandler renders every failure as errorBody. Internal detail of
// unexpected and configuration errors stays in the log.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := renderError(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "write error response", "error", err)
	}
}

func renderError(err error) (int, errorBody) {
	var appErr *apperror.Error
	var bindErr *echo.BindingError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &appErr):
		status := appErr.Kind.Status()
		if status >= http.StatusInternalServerError {
			return status, errorBody{Error: appErr.Code, Message: "server is not configured to handle this request"}
		}
		return status, errorBody{Error: appErr.Code, Message: appErr.Message, Details: appErr.Details}

	case errors.As(err, &bindErr):
		return http.StatusBadRequest, errorBody{
			Error:   "ValidationError",
			Message: fmt.Sprintf("invalid value for %s", bindErr.Field),
		}

	case errors.As(err, &httpErr):
		return httpErr.Code, errorBody{Error: http.StatusText(httpErr.Code), Message: fmt.Sprint(httpErr.Message)}

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorBody{Error: "NotFound", Message: "resource not found"}
	}

	return http.StatusInternalServerError, errorBody{Error: "UnexpectedError", Message: "something went wrong"}
}
