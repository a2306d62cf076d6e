package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity-service/internal/app"
	"identity-service/internal/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateSigning(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(application.Run)

		g.Go(func() error {
			<-gctx.Done() // signal or server failure

			logger.Info("shutdown signal received", nil)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return application.Shutdown(shutdownCtx)
		})

		logger.Info("identity-service started", map[string]any{
			"port": cfg.AppPort,
		})

		if err := g.Wait(); err != nil {
			return err
		}

		logger.Info("identity-service stopped cleanly", nil)
		return nil
	},
}
