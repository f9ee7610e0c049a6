package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/hortifood/internal/config"
	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/mockapi"
	"github.com/Skotchmaster/hortifood/internal/persist"
)

func mockAPICmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Run the mock user backend",
		Long: `Run a local backend implementing POST /user, POST /user/login
(and /auth/login) and GET /user, seeded with joao@email.com and
maria@email.com (password 123456). Requires JWT_SECRET; uses
DATABASE_URL (postgres) when set, MOCKAPI_DB_PATH (sqlite) otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
			if cfg.DatabaseURL == "" {
				config.MustNonEmpty(cfg.MockAPIDBPath, "MOCKAPI_DB_PATH")
			}
			if port > 0 {
				cfg.MockAPIPort = port
			}
			return runMockAPI(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides MOCKAPI_PORT)")
	return cmd
}

func runMockAPI(cfg *config.Config) error {
	l := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), l)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var db *gorm.DB
	var err error
	if cfg.DatabaseURL != "" {
		db, err = persist.OpenPostgres(initCtx, cfg.DatabaseURL)
	} else {
		db, err = persist.OpenSQLite(initCtx, cfg.MockAPIDBPath)
	}
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	e, err := mockapi.NewServer(initCtx, db, cfg.JWTSecret, l)
	if err != nil {
		return err
	}
	return listenAndServe(l, "mockapi", cfg.MockAPIPort, e)
}
