// Package app provides application lifecycle management for the content sync server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacklok/content-search-sync/internal/config"
)

// ContentSyncApp encapsulates all components needed to run the content sync server.
// It provides lifecycle management and graceful shutdown capabilities.
type ContentSyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the HTTP server, and a background reindex when configured.
// This method blocks until the HTTP server stops or encounters an error.
func (app *ContentSyncApp) Start() error {
	if app.config.Reindex != nil && app.config.Reindex.OnStartup {
		go app.reindexOnStartup()
	}

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (app *ContentSyncApp) reindexOnStartup() {
	ctx, cancel := context.WithTimeout(app.ctx, app.config.Reindex.GetTimeout())
	defer cancel()

	if !app.components.Synchronizer.IsAvailable(ctx) {
		slog.Warn("Skipping startup reindex, search engine is not available")
		return
	}
	lines := app.components.Synchronizer.ReindexAll(ctx)
	slog.Info("Startup reindex finished", "lines", len(lines))
}

// Stop gracefully stops the application with the given timeout.
// It shuts down the HTTP server and then releases the components.
func (app *ContentSyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	// Cancel the application context
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}

	if err := app.components.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to release components: %w", err))
	}

	slog.Info("Server shutdown complete")
	return errors.Join(errs...)
}

// GetConfig returns the application configuration
func (app *ContentSyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *ContentSyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the application components
func (app *ContentSyncApp) Components() *AppComponents {
	return app.components
}
