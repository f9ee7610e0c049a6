package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/hortifood/internal/metrics"
	loggingmw "github.com/Skotchmaster/hortifood/internal/middleware/logging"
)

type Deps struct {
	Session  *SessionHTTP
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Profile  *ProfileHTTP
	Metrics  *metrics.Metrics
}

// New returns an echo instance with the middleware chain and all routes.
func New(logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(loggingmw.RequestLogger(logger))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	sess := e.Group("/session")
	sess.GET("", d.Session.GetSession)
	sess.POST("/login", d.Session.Login)
	sess.POST("/register", d.Session.Register)
	sess.DELETE("", d.Session.Logout)

	e.GET("/categories", d.Catalog.Categories)
	e.GET("/stores", d.Catalog.ListStores)
	e.GET("/stores/:id", d.Catalog.GetStore)
	e.GET("/stores/:id/products", d.Catalog.ListProducts)
	e.GET("/search", d.Catalog.Search)

	cart := e.Group("/cart")
	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddItem)
	cart.PATCH("/items/:productId", d.Cart.UpdateQuantity)
	cart.DELETE("/items/:productId", d.Cart.RemoveItem)
	cart.DELETE("", d.Cart.ClearCart)

	e.POST("/checkout", d.Checkout.Submit)
	e.GET("/profile", d.Profile.GetProfile)
}
