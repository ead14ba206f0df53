package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bher20/solarquote/internal/api"
	"github.com/bher20/solarquote/internal/cron"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the snapshot janitor and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.HTTP.Addr = addr
			}
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	log := opts.logger

	a, err := buildApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewMux(api.Deps{
			Service:  a.svc,
			Catalog:  a.catalog,
			Storage:  a.st,
			Currency: cfg.Currency,
			Log:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("solarquote listening", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DB.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Janitor.Enabled {
		j := cron.NewJanitor(a.st, log, cfg.Janitor.Schedule, cfg.Janitor.Retention)
		g.Go(func() error { return ignoreCanceled(j.Run(gctx)) })
	}

	if p, ok := a.st.(cron.PoolReporter); ok {
		g.Go(func() error { return ignoreCanceled(cron.RunPoolStats(gctx, p, 15*time.Second, log)) })
	}

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
