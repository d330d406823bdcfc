package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/internal/api"
	"github.com/dealmungchi/fuaas/logger"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves quotes and images over HTTP until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.ForServer()
		ctx := cmd.Context()

		deps, err := initializeDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Cleanup()

		server := api.NewServer(deps.Store, deps.Blobs)

		serverDone := make(chan error, 1)
		go func() {
			serverDone <- server.Start(fmt.Sprintf(":%d", cfg.Port))
		}()

		// Wait for shutdown signal or server error
		select {
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
		case err := <-serverDone:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info().Msg("Shutting down gracefully...")
		return server.Shutdown(shutdownCtx)
	},
}
