package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hortifood/internal/cart"
	"github.com/Skotchmaster/hortifood/internal/catalog"
	"github.com/Skotchmaster/hortifood/internal/logging"
)

// maxAddQuantity bounds a single add request.
const maxAddQuantity = 99

type CartHTTP struct {
	Cart    *cart.Store
	Catalog *catalog.Catalog
}

type addItemRequest struct {
	StoreID   int `json:"store_id"`
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Cart.State())
}

// AddItem resolves the product in the catalog and adds it Quantity times
// (once when Quantity is omitted).
func (h *CartHTTP) AddItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.add_item")

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 0 {
		l.Warn("add_to_cart_error", "status", 400, "reason", "negative quantity")
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}
	if req.Quantity > maxAddQuantity {
		l.Warn("add_to_cart_error", "status", 400, "reason", "quantity too large", "quantity", req.Quantity)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity too large")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, store, err := h.Catalog.Product(req.StoreID, req.ProductID)
	if err != nil {
		return notFoundOr500(l, "add_to_cart_error", err)
	}

	h.Cart.AddItemN(product, store, req.Quantity)

	l.Info("add_to_cart_success", "product_id", product.ID, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, h.Cart.State())
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.update_quantity")

	productID, err := intParam(c, "productId")
	if err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_quantity_error", "status", 400, "reason", "quantity required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity required")
	}

	h.Cart.UpdateQuantity(productID, *req.Quantity)
	return c.JSON(http.StatusOK, h.Cart.State())
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.remove_item")

	productID, err := intParam(c, "productId")
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	h.Cart.RemoveItem(productID)
	return c.JSON(http.StatusOK, h.Cart.State())
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	h.Cart.ClearCart()
	return c.JSON(http.StatusOK, h.Cart.State())
}
