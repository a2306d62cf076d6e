package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"identity-service/internal/config"
	"identity-service/internal/logger"
)

type App struct {
	httpServer *http.Server
	infra      *Infra
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	infra, err := OpenInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router, err := setupHTTP(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		httpServer: server,
		infra:      infra,
	}, nil
}

// Run serves until Shutdown is called. A clean shutdown returns nil.
func (a *App) Run() error {
	logger.Info("http server listening", map[string]any{
		"addr": a.httpServer.Addr,
	})
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return a.infra.Close()
}
