// Package mockapi is a local stand-in for the storefront backend: user
// creation, login with an accessToken cookie, and a cookie-guarded user list.
package mockapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Users     *UserHTTP
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/user", d.Users.Register)
	e.POST("/user/login", d.Users.Login)
	e.POST("/auth/login", d.Users.Login)
	e.GET("/user", d.Users.ListUsers, RequireAuth(d.JWTSecret))
}
