package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/content-search-sync/internal/api"
	"github.com/stacklok/content-search-sync/internal/config"
	"github.com/stacklok/content-search-sync/internal/search"
	"github.com/stacklok/content-search-sync/internal/sources"
	"github.com/stacklok/content-search-sync/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// AppOptions is a function that configures the app builder
//
//nolint:revive // This name is fine
type AppOptions func(*appConfig) error

// appConfig collects the options of NewContentSyncApp and NewComponents.
// Component overrides exist for tests; production code leaves them nil.
type appConfig struct {
	config *config.Config

	// Optional component overrides
	searchClient search.Client
	source       sources.Source
	telemetry    *telemetry.Telemetry

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
}

func baseConfig(opts ...AppOptions) (*appConfig, error) {
	cfg := &appConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// NewContentSyncApp builds the application: components plus the HTTP server
func NewContentSyncApp(
	ctx context.Context,
	opts ...AppOptions,
) (*ContentSyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build components: %w", err)
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		if closeErr := components.Close(ctx); closeErr != nil {
			slog.Warn("Failed to release components", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &ContentSyncApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) AppOptions {
	return func(cfg *appConfig) error {
		if c == nil {
			return fmt.Errorf("config cannot be nil")
		}
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) AppOptions {
	return func(cfg *appConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) AppOptions {
	return func(cfg *appConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout sets the per request timeout of the HTTP server
func WithRequestTimeout(d time.Duration) AppOptions {
	return func(cfg *appConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithSearchClient injects the search engine client (for testing)
func WithSearchClient(c search.Client) AppOptions {
	return func(cfg *appConfig) error {
		cfg.searchClient = c
		return nil
	}
}

// WithSource injects the content source (for testing)
func WithSource(s sources.Source) AppOptions {
	return func(cfg *appConfig) error {
		cfg.source = s
		return nil
	}
}

// WithTelemetry injects telemetry providers (for testing)
func WithTelemetry(t *telemetry.Telemetry) AppOptions {
	return func(cfg *appConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	b *appConfig,
	c *AppComponents,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing come first so they see every request
	metricsMiddleware, err := telemetry.MetricsMiddleware(c.Telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	middlewares := append([]func(http.Handler) http.Handler{
		metricsMiddleware,
		telemetry.TracingMiddleware(c.Telemetry.TracerProvider()),
	}, b.middlewares...)

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(middlewares...),
		api.WithEventHandler(c.Subscriber),
		api.WithReindexTimeout(b.config.Reindex.GetTimeout()),
	}
	if h := c.Telemetry.MetricsHandler(); h != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(h))
		slog.Info("Prometheus metrics endpoint enabled", "path", "/metrics")
	}

	router, err := api.NewServer(c.Synchronizer, c.Registry, serverOpts...)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
