package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/optimode/mailprobe/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve batch verification over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}

		app := api.New(newVerifier(logger), api.Config{
			Concurrency: concurrency(),
			MaxBatch:    viper.GetInt("max-batch"),
			Logger:      logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		addr := viper.GetString("listen")
		go func() {
			logger.Info().Str("addr", addr).Msg("listening")
			errCh <- app.Listen(addr)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("listen %s: %w", addr, err)
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("max-batch", 1000, "maximum addresses per request")
	_ = viper.BindPFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}
