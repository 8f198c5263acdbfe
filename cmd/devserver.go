package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kingface-client/infrastructure/config"
	"kingface-client/interfaces/devserver"
	"kingface-client/pkg/observability"
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the in-memory reference server for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
		if err != nil {
			return err
		}
		defer logger.Sync()

		server := devserver.New(devserver.Options{
			JWTSecret:  cfg.DevJWTSecret,
			CORSOrigin: cfg.DevCORSOrigin,
		}, logger)

		srv := &http.Server{
			Addr:         cfg.DevAddr,
			Handler:      server.Handler(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting dev server", zap.String("address", cfg.DevAddr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigChan:
		}

		logger.Info("Shutting down dev server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(devserverCmd)
}
