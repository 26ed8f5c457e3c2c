package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cleepadm/internal/config"
	"cleepadm/internal/httpapi"
	"cleepadm/internal/manager"
	"cleepadm/internal/push"
	"cleepadm/internal/rpc"
)

const shutdownTimeout = 5 * time.Second

// runServe wires the backend client, the manager, the push client and the
// HTTP API, and blocks until ctx is canceled or one of them fails.
func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetDefaultLogLevel(cfg.HTTPLogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetRequestTimeout(cfg.RequestTimeout.Duration)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	httpapi.SetBaseContext(ctx)

	backend := rpc.NewClient(cfg.BackendURL, cfg.CommandTimeout.Duration, log)
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Commander:           backend,
		Logger:              log,
		LegacyRenderCommand: cfg.LegacyRenderCommand,
		NotificationsBuffer: cfg.NotificationsBuffer,
		ReloadTimeout:       cfg.ReloadTimeout.Duration,
	})
	pc := push.NewClient(cfg.PushURL, func(n push.Notification) {
		if err := mgr.Enqueue(n); err != nil {
			log.Warn().Err(err).Msg("push notification dropped")
		}
	}, log)
	mgr.SetPushProbe(pc.Connected)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mgr.Run(gctx)
		return nil
	})
	g.Go(func() error {
		pc.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.BackendURL).Str("push", cfg.PushURL).Msg("cleepadm listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown error")
		}
		return nil
	})
	err := g.Wait()
	log.Info().Msg("cleepadm stopped")
	return err
}
