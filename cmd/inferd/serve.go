package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"inferd/internal/httpapi"
	"inferd/internal/registry"
	"inferd/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the inference daemon until SIGINT/SIGTERM",
		Example: "  inferd serve --config /etc/inferd/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	svc, err := service.New(service.Options{Config: a.cfg, Logger: a.log})
	if err != nil {
		return err
	}

	// Pick up loose model files so a freshly imaged box starts usable.
	added, err := svc.Registry().ScanDir(registry.ScanDefaults{
		CtxSize: a.cfg.CtxSize,
		Threads: a.cfg.Threads,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("models dir scan failed")
	} else if len(added) > 0 {
		a.log.Info().Strs("models", added).Msg("registered discovered models")
	}

	if id := a.cfg.DefaultModel; id != "" {
		if _, err := svc.LoadModel(ctx, id, false); err != nil {
			a.log.Warn().Err(err).Str("model", id).Msg("default model load failed")
		}
	}

	svc.Start(ctx)

	srv := &http.Server{
		Addr:    a.cfg.Addr,
		Handler: httpapi.NewMux(svc, a.log.With().Str("component", "http").Logger()),
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Msg("diagnostics endpoint listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		a.log.Error().Err(err).Msg("diagnostics server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("diagnostics shutdown incomplete")
	}
	return svc.Shutdown()
}
