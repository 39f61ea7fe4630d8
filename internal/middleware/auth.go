package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"buybizz/internal/client"
	"buybizz/internal/model"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	contextUserKey    = "user"
	sessionCookieName = "__session"
)

// Identify resolves the session token, if any, to a local user and stores it
// on the context. It never rejects a request; the guards below do that.
func Identify(identityClient client.IdentityClient, identityService service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := sessionToken(c)
			if raw == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			identity, err := identityClient.VerifySessionToken(raw)
			if err != nil {
				if errors.Is(err, client.ErrIdentityNotConfigured) {
					slog.WarnContext(ctx, "session token ignored, identity key not configured")
				} else {
					slog.DebugContext(ctx, "reject session token", "error", err)
				}
				return next(c)
			}

			if user, ok := identityService.Resolve(ctx, identity); ok {
				c.Set(contextUserKey, user)
			}
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// CurrentUser returns the user set by Identify, or nil for anonymous callers.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(contextUserKey).(*model.User)
	return user
}

func RequireAuth() echo.MiddlewareFunc {
	return guard(service.RequireAuth)
}

func RequireVendor() echo.MiddlewareFunc {
	return guard(service.RequireVendor)
}

func RequireAdmin() echo.MiddlewareFunc {
	return guard(service.RequireAdmin)
}

func guard(check func(*model.User) (*model.User, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := check(CurrentUser(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
