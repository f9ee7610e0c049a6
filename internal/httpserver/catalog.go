package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hortifood/internal/catalog"
	"github.com/Skotchmaster/hortifood/internal/logging"
)

type CatalogHTTP struct {
	Catalog *catalog.Catalog
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.Categories())
}

func (h *CatalogHTTP) ListStores(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.Stores())
}

func (h *CatalogHTTP) GetStore(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "catalog.get_store")

	id, err := intParam(c, "id")
	if err != nil {
		l.Warn("get_store_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}
	s, err := h.Catalog.Store(id)
	if err != nil {
		return notFoundOr500(l, "get_store_error", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "catalog.list_products")

	id, err := intParam(c, "id")
	if err != nil {
		l.Warn("list_products_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}
	products, err := h.Catalog.Products(id, c.QueryParam("category"))
	if err != nil {
		return notFoundOr500(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	hits := h.Catalog.Search(c.QueryParam("q"))
	return c.JSON(http.StatusOK, paginate(c, hits))
}

func intParam(c echo.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func notFoundOr500(l *slog.Logger, event string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	l.Error(event, "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
