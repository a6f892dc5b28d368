package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/internal/repositories/reportrun"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/routes"
	"github.com/Ramsey-B/fern/pkg/routes/health"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{}, runServe)
		},
	}
	cmd.Flags().Int("port", 0, "HTTP port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	if err := a.prepareReads(ctx); err != nil {
		return err
	}

	checker := health.NewChecker(version)
	if a.client != nil {
		checker.AddCheck("graph", a.client.VerifyConnectivity)
	}
	if a.cache != nil {
		checker.AddCheck("redis", a.cache.Ping)
	}

	deps := routes.Deps{
		AppName:     a.cfg.AppName,
		Service:     a.service,
		Projections: a.catalog.Names(),
		Source: func(context.Context) (models.Dataset, error) {
			return a.loadDataset()
		},
		Health: checker,
		Logger: a.logger,
	}
	if a.db != nil {
		checker.AddCheck("postgres", a.db.Ping)
		deps.Reports = reportrun.NewRepository(a.db.DB(), a.logger)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Port),
		Handler:      routes.New(deps),
		ReadTimeout:  time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("Starting %s on %s", a.cfg.AppName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	checker.SetReady(true)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	checker.SetReady(false)
	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
