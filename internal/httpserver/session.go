package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/session"
)

const (
	msgNameRequired        = "Nome é obrigatório"
	msgCredentialsRequired = "Email e senha são obrigatórios"
	msgInvalidCredentials  = "Email ou senha incorretos"
	msgRegisterFailed      = "Erro ao criar conta"
)

type SessionHTTP struct {
	Store *session.Store
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SessionHTTP) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.State())
}

func (h *SessionHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		l.Warn("login_error", "status", 400, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusBadRequest, msgCredentialsRequired)
	}

	if !h.Store.Login(ctx, strings.TrimSpace(req.Email), req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidCredentials)
	}
	return c.JSON(http.StatusOK, h.Store.State())
}

func (h *SessionHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.register")

	var req credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Name) == "" {
		l.Warn("register_error", "status", 400, "reason", "missing name")
		return echo.NewHTTPError(http.StatusBadRequest, msgNameRequired)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusBadRequest, msgCredentialsRequired)
	}

	if !h.Store.Register(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password) {
		return echo.NewHTTPError(http.StatusBadRequest, msgRegisterFailed)
	}
	return c.JSON(http.StatusCreated, h.Store.State())
}

func (h *SessionHTTP) Logout(c echo.Context) error {
	h.Store.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
