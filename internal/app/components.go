package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/stacklok/content-search-sync/internal/config"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/events"
	"github.com/stacklok/content-search-sync/internal/search"
	"github.com/stacklok/content-search-sync/internal/search/bleve"
	"github.com/stacklok/content-search-sync/internal/search/elastic"
	"github.com/stacklok/content-search-sync/internal/sources"
	"github.com/stacklok/content-search-sync/internal/sync"
	"github.com/stacklok/content-search-sync/internal/telemetry"
	"github.com/stacklok/content-search-sync/internal/versions"
)

// minimumElasticsearchVersion is the oldest cluster the mapping format is known to work with
const minimumElasticsearchVersion = "7.10.0"

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Registry describes the configured content types
	Registry content.TypeRegistry

	// Search is the engine client documents are written to
	Search search.Client

	// Source supplies records during a full reindex
	Source content.Source

	// Synchronizer mirrors records into the per content type indices
	Synchronizer *sync.Synchronizer

	// Subscriber logs and forwards content events to the Synchronizer
	Subscriber *events.Subscriber

	// Telemetry holds the tracer and meter providers
	Telemetry *telemetry.Telemetry

	closers []io.Closer
}

// Close releases the source, the engine and the telemetry providers
func (c *AppComponents) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil

	if c.Telemetry != nil {
		if err := c.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewComponents builds everything needed to synchronize content, without the HTTP server.
// The caller must Close the returned components.
func NewComponents(ctx context.Context, opts ...AppOptions) (*AppComponents, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}
	return buildComponents(ctx, cfg)
}

func buildComponents(ctx context.Context, b *appConfig) (_ *AppComponents, err error) {
	if b.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &AppComponents{}
	defer func() {
		if err != nil {
			if closeErr := c.Close(ctx); closeErr != nil {
				slog.Warn("Failed to release components", "error", closeErr)
			}
		}
	}()

	c.Telemetry = b.telemetry
	if c.Telemetry == nil {
		c.Telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(b.config.Telemetry))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	registry, err := content.NewConfigRegistry(b.config)
	if err != nil {
		return nil, fmt.Errorf("failed to build content type registry: %w", err)
	}
	c.Registry = registry

	c.Search = b.searchClient
	if c.Search == nil {
		client, closer, err := buildSearchClient(ctx, b.config)
		if err != nil {
			return nil, err
		}
		c.Search = client
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	c.Source = b.source
	if c.Source == nil {
		src, err := sources.NewFromConfig(b.config.Content, registry)
		if err != nil {
			return nil, fmt.Errorf("failed to create content source: %w", err)
		}
		c.Source = src
		c.closers = append(c.closers, src)
	}

	syncMetrics, err := telemetry.NewSyncMetrics(c.Telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	c.Synchronizer = sync.New(c.Search, c.Source, registry, b.config.Search.Index,
		sync.WithIndexSettings(b.config.Search.IndexSettings),
		sync.WithMetrics(syncMetrics),
		sync.WithTracerProvider(c.Telemetry.TracerProvider()),
	)
	c.Subscriber = events.NewSubscriber(c.Synchronizer, slog.Default())

	slog.Info("Sync components initialized",
		"engine", b.config.Search.GetEngine(),
		"index", b.config.Search.Index,
		"searchable_types", len(content.Searchable(registry)),
	)
	return c, nil
}

// buildSearchClient creates the engine client selected by the configuration.
// The returned closer is nil when the client holds no resources.
func buildSearchClient(ctx context.Context, cfg *config.Config) (search.Client, io.Closer, error) {
	switch cfg.Search.GetEngine() {
	case config.EngineBleve:
		engine, err := bleve.New(cfg.Search.Bleve.GetPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bleve indices: %w", err)
		}
		return engine, engine, nil

	case config.EngineElasticsearch:
		var opts []elastic.Option
		if cfg.Search.Username != "" {
			password, err := cfg.Search.GetPassword()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to get search password: %w", err)
			}
			opts = append(opts, elastic.WithBasicAuth(cfg.Search.Username, password))
		}
		client, err := elastic.New(cfg.Search.Hosts, opts...)
		if err != nil {
			return nil, nil, err
		}
		checkServerVersion(ctx, client)
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported search engine: %s", cfg.Search.Engine)
	}
}

// checkServerVersion warns about clusters older than the supported minimum
// or reporting a version that is not semver.
// An unreachable cluster is not an error at startup.
func checkServerVersion(ctx context.Context, client *elastic.Client) {
	version, err := client.ServerVersion(ctx)
	if err != nil {
		slog.Warn("Could not determine Elasticsearch version", "error", err)
		return
	}
	if !versions.AtLeast(version, minimumElasticsearchVersion) {
		slog.Warn("Elasticsearch version is older than supported or not recognized",
			"version", version,
			"minimum", minimumElasticsearchVersion,
		)
		return
	}
	slog.Debug("Connected to Elasticsearch", "version", version)
}
