package mockapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	loggingmw "github.com/Skotchmaster/hortifood/internal/middleware/logging"
)

// NewServer migrates and seeds db and returns the routed echo instance.
func NewServer(ctx context.Context, db *gorm.DB, secret []byte, logger *slog.Logger) (*echo.Echo, error) {
	if len(secret) == 0 {
		return nil, errors.New("mockapi: empty jwt secret")
	}
	repo, err := NewGormRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := repo.SeedUsers(ctx); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(loggingmw.RequestLogger(logger))

	Register(e, &Deps{
		Users:     &UserHTTP{Repo: repo, JWTSecret: secret},
		JWTSecret: secret,
	})
	return e, nil
}
