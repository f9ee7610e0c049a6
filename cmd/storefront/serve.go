package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/hortifood/internal/backend"
	"github.com/Skotchmaster/hortifood/internal/cart"
	"github.com/Skotchmaster/hortifood/internal/catalog"
	"github.com/Skotchmaster/hortifood/internal/checkout"
	"github.com/Skotchmaster/hortifood/internal/config"
	"github.com/Skotchmaster/hortifood/internal/events"
	"github.com/Skotchmaster/hortifood/internal/httpserver"
	"github.com/Skotchmaster/hortifood/internal/logging"
	"github.com/Skotchmaster/hortifood/internal/metrics"
	"github.com/Skotchmaster/hortifood/internal/persist"
	"github.com/Skotchmaster/hortifood/internal/session"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port > 0 {
				cfg.ServerPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(cfg *config.Config) error {
	l := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), l)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	storage, err := persist.Open(initCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			l.Error("storage_close_error", "error", err)
		}
	}()

	publisher, err := events.New(cfg.KafkaBrokers)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			l.Error("kafka_close_error", "error", err)
		}
	}()

	m := metrics.New()
	client := backend.NewClient(cfg.APIBaseURL,
		backend.WithLoginPath(cfg.LoginPath),
		backend.WithTimeout(cfg.HTTPTimeout),
	)

	sess := session.New(client, storage, session.WithPublisher(publisher), session.WithMetrics(m))
	sess.RestoreSession(ctx)

	c := cart.New()
	c.Subscribe(func(st cart.State) { m.CartItems(st.TotalItems) })

	cat := catalog.Default()
	history := checkout.NewHistory()

	e := httpserver.New(l, &httpserver.Deps{
		Session: &httpserver.SessionHTTP{Store: sess},
		Catalog: &httpserver.CatalogHTTP{Catalog: cat},
		Cart:    &httpserver.CartHTTP{Cart: c, Catalog: cat},
		Checkout: &httpserver.CheckoutHTTP{Svc: &checkout.Service{
			Cart:          c,
			Session:       sess,
			Publisher:     publisher,
			History:       history,
			Metrics:       m,
			PaymentDelay:  cfg.PaymentDelay,
			RedirectDelay: cfg.RedirectDelay,
			OnRedirect: func(path string) {
				l.Info("checkout_redirect", "to", path)
			},
		}},
		Profile: &httpserver.ProfileHTTP{Session: sess, History: history},
		Metrics: m,
	})

	return listenAndServe(l, "storefront", cfg.ServerPort, e)
}
