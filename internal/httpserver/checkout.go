package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hortifood/internal/checkout"
	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/models"
	"github.com/Skotchmaster/hortifood/internal/session"
)

type CheckoutHTTP struct {
	Svc *checkout.Service
}

type checkoutResponse struct {
	Order           models.Order `json:"order"`
	RedirectTo      string       `json:"redirect_to"`
	RedirectAfterMS int64        `json:"redirect_after_ms"`
}

func (h *CheckoutHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit")

	var req checkout.PaymentDetails
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Submit(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusConflict, "Carrinho vazio")
	case errors.Is(err, checkout.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "checkout interrupted")
	default:
		l.Error("checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		Order:           res.Order,
		RedirectTo:      res.RedirectTo,
		RedirectAfterMS: res.RedirectAfter.Milliseconds(),
	})
}

type ProfileHTTP struct {
	Session *session.Store
	History *checkout.History
}

type profileResponse struct {
	User   *models.UserIdentity `json:"user"`
	Orders []models.Order       `json:"orders"`
}

func (h *ProfileHTTP) GetProfile(c echo.Context) error {
	user := h.Session.CurrentUser()
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return c.JSON(http.StatusOK, profileResponse{User: user, Orders: h.History.Orders(user.ID)})
}
