package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appLog "careplan/internal/log"
	"careplan/internal/logbook"
	"careplan/internal/plan"
	"careplan/internal/refresh"
	"careplan/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agenda over HTTP and reload the plan on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			// --listen overrides the config file if provided.
			if listen != "" {
				cfg.Listen = listen
			}

			store, err := plan.NewStore(cfg.PlanPath)
			if err != nil {
				return err
			}
			var opts []web.Option
			if cfg.LogbookPath != "" {
				lb, err := logbook.Open(cfg.LogbookPath)
				if err != nil {
					return err
				}
				defer lb.Close()
				opts = append(opts, web.WithLogbook(lb))
			}
			srv := web.NewServer(cfg, store, opts...)
			store.OnReload(srv.InvalidateCache)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			refreshDone, err := refresh.Start(ctx, cfg.RefreshCron, func(context.Context) error {
				return store.Reload()
			})
			if err != nil {
				return err
			}

			httpSrv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			serveErr := make(chan error, 1)
			go func() {
				appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "plan_path", cfg.PlanPath)
				serveErr <- httpSrv.ListenAndServe()
			}()

			select {
			case err = <-serveErr:
				stop()
			case <-ctx.Done():
				appLog.Info("signal received, shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				err = httpSrv.Shutdown(shutdownCtx)
			}
			<-refreshDone

			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			appLog.Info("careplan exiting")
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
