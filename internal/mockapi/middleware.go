package mockapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hortifood/internal/logging"
)

// RequireAuth admits requests carrying a valid accessToken cookie.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("mw", "mockapi.require_auth")

			cookie, err := c.Cookie(AccessCookie)
			if err != nil || cookie.Value == "" {
				l.Warn("auth_error", "status", 401, "reason", "missing access token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			claims, err := AccessClaimsFromToken(cookie.Value, secret)
			if err != nil {
				l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			c.Set("user_id", claims.Subject)
			return next(c)
		}
	}
}
