package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/content-search-sync/internal/app"
)

const defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the content sync server",
		Long: `Start the content sync server.

The server requires a configuration file (--config) that specifies:
- The search engine (elasticsearch or bleve) and base index name
- The content types, their fields and which of them are searchable
- Where records are read from during a full reindex (file or database)

See examples/ directory for sample configurations.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	addConfigFlag(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	address, err := cmd.Flags().GetString("address")
	if err != nil {
		return fmt.Errorf("failed to get address flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	server, err := app.NewContentSyncApp(ctx,
		app.WithConfig(cfg),
		app.WithAddress(address),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-errCh:
		if stopErr := server.Stop(defaultGracefulTimeout); stopErr != nil {
			slog.Error("Failed to release components", "error", stopErr)
		}
		return err
	}

	return server.Stop(defaultGracefulTimeout)
}
