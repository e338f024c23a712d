// Package api provides the HTTP server of the content sync service.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/content-search-sync/internal/api/common"
	"github.com/stacklok/content-search-sync/internal/api/manage"
	v1 "github.com/stacklok/content-search-sync/internal/api/v1"
	"github.com/stacklok/content-search-sync/internal/api/webhook"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/sync"
)

const defaultReindexTimeout = 10 * time.Minute

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	events         webhook.Handler
	reindexTimeout time.Duration
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithEventHandler replaces the handler receiving webhook events
func WithEventHandler(h webhook.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.events = h
	}
}

// WithReindexTimeout bounds reindex runs started over HTTP
func WithReindexTimeout(d time.Duration) ServerOption {
	return func(cfg *serverConfig) {
		if d > 0 {
			cfg.reindexTimeout = d
		}
	}
}

// NewServer creates the router. Webhook events call svc directly unless an
// event handler is configured.
func NewServer(svc sync.Service, registry content.TypeRegistry, opts ...ServerOption) (*chi.Mux, error) {
	cfg := &serverConfig{
		middlewares:    []func(http.Handler) http.Handler{},
		reindexTimeout: defaultReindexTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.events == nil {
		cfg.events = serviceEvents{svc}
	}

	reindexer := common.NewReindexer(svc, cfg.reindexTimeout)
	page, err := manage.NewPage(svc, reindexer)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Mount("/", v1.HealthRouter(svc))
	r.Mount("/manage", page.Router())
	r.Mount("/api/v1", v1.Router(svc, registry, reindexer))
	r.Mount("/events", webhook.Router(cfg.events, registry))

	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}

	return r, nil
}

// serviceEvents adapts the synchronizer to the webhook handler without logging
type serviceEvents struct {
	svc sync.Service
}

func (s serviceEvents) Save(ctx context.Context, record content.Record) (sync.Outcome, error) {
	return s.svc.OnSave(ctx, record)
}

func (s serviceEvents) Delete(ctx context.Context, record content.Record) (sync.Outcome, error) {
	return s.svc.OnDelete(ctx, record)
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
