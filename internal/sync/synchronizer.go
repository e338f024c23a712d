package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/otel"
	"github.com/stacklok/content-search-sync/internal/search"
	"github.com/stacklok/content-search-sync/internal/telemetry"
)

// TracerName is the instrumentation name used for synchronizer spans
const TracerName = "github.com/stacklok/content-search-sync/sync"

// Outcome describes what a single save or delete did to the index
type Outcome string

const (
	// OutcomeSkipped means the content type is not searchable
	OutcomeSkipped Outcome = "skipped"
	// OutcomeCreated means a new document was written
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing document was updated
	OutcomeUpdated Outcome = "updated"
	// OutcomeDeleted means the document was removed
	OutcomeDeleted Outcome = "deleted"
	// OutcomeNotFound means there was no document to remove
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means the engine rejected the operation
	OutcomeFailed Outcome = "failed"
)

// RunSummary describes the last full reindex
type RunSummary struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	ContentTypes int           `json:"content_types"`
	Imported     int           `json:"imported"`
	Failed       int           `json:"failed"`
}

// Synchronizer mirrors content records into per content type search indices
type Synchronizer struct {
	client   search.Client
	source   content.Source
	registry content.TypeRegistry

	index    string
	settings map[string]any

	metrics *telemetry.SyncMetrics
	tracer  trace.Tracer

	debug DebugLog

	mu      gosync.Mutex
	lastRun *RunSummary
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithIndexSettings sets the engine settings applied when indices are created
func WithIndexSettings(settings map[string]any) Option {
	return func(s *Synchronizer) {
		s.settings = settings
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(s *Synchronizer) {
		s.metrics = metrics
	}
}

// WithTracerProvider enables tracing with the given provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Synchronizer) {
		if tp != nil {
			s.tracer = tp.Tracer(TracerName)
		}
	}
}

// New creates a Synchronizer writing to indices named after index
func New(
	client search.Client,
	source content.Source,
	registry content.TypeRegistry,
	index string,
	opts ...Option,
) *Synchronizer {
	s := &Synchronizer{
		client:   client,
		source:   source,
		registry: registry,
		index:    index,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexName returns the name of the index holding documents of a content type
func IndexName(base, category string) string {
	return base + "-" + category
}

// IndexName returns the index name for a content type
func (s *Synchronizer) IndexName(category string) string {
	return IndexName(s.index, category)
}

// IsAvailable reports whether the search engine answers. Errors are logged, never returned.
func (s *Synchronizer) IsAvailable(ctx context.Context) bool {
	if err := s.client.Ping(ctx); err != nil {
		slog.Debug("Search engine unavailable", "error", err)
		return false
	}
	return true
}

// IndexesExist reports whether the index of at least one searchable content type exists
func (s *Synchronizer) IndexesExist(ctx context.Context) bool {
	for _, category := range content.Searchable(s.registry) {
		exists, err := s.client.IndexExists(ctx, s.IndexName(category.Name))
		if err != nil {
			slog.Debug("Failed to check index", "index", s.IndexName(category.Name), "error", err)
			continue
		}
		if exists {
			return true
		}
	}
	return false
}

// Mappings returns the current engine mappings of every existing content type index
func (s *Synchronizer) Mappings(ctx context.Context) map[string]mapping.Schema {
	result := map[string]mapping.Schema{}
	for _, category := range content.Searchable(s.registry) {
		name := s.IndexName(category.Name)
		schema, err := s.client.GetMapping(ctx, name)
		if err != nil {
			if !errors.Is(err, search.ErrNotFound) {
				slog.Warn("Failed to get mapping", "index", name, "error", err)
			}
			continue
		}
		result[name] = schema
	}
	return result
}

// DebugLog returns the lines recorded by the last full reindex
func (s *Synchronizer) DebugLog() []string {
	return s.debug.Lines()
}

// LastRun returns the summary of the last full reindex, or nil when none ran
func (s *Synchronizer) LastRun() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	return &run
}

// ReindexAll rebuilds the index of every searchable content type and returns
// the debug lines of the run. Each content type goes through delete, create,
// mapping and import; a failing step is logged and the next step runs anyway.
func (s *Synchronizer) ReindexAll(ctx context.Context) []string {
	run := RunSummary{ID: uuid.NewString(), StartedAt: time.Now()}

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.ReindexAll",
		trace.WithAttributes(otel.AttrRunID.String(run.ID)),
	)
	defer span.End()

	s.debug.Reset()
	logger := slog.With("run_id", run.ID)
	logger.Info("Starting full reindex")

	categories := content.Searchable(s.registry)
	for _, category := range categories {
		imported, failed := s.reindexCategory(ctx, logger, category)
		run.Imported += imported
		run.Failed += failed
	}

	run.ContentTypes = len(categories)
	run.Duration = time.Since(run.StartedAt)
	span.SetAttributes(otel.AttrResultCount.Int(run.Imported))

	s.mu.Lock()
	s.lastRun = &run
	s.mu.Unlock()

	logger.Info("Full reindex finished",
		"content_types", run.ContentTypes,
		"imported", run.Imported,
		"failed", run.Failed,
		"duration", run.Duration.String())

	return s.debug.Lines()
}

// reindexCategory runs one content type through delete, create, mapping and
// import. It returns the number of records read and the number that failed to index.
func (s *Synchronizer) reindexCategory(
	ctx context.Context,
	logger *slog.Logger,
	category content.Category,
) (imported, failed int) {
	name := s.IndexName(category.Name)
	start := time.Now()

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.reindexCategory",
		trace.WithAttributes(
			otel.AttrContentType.String(category.Name),
			otel.AttrIndexName.String(name),
		),
	)
	defer span.End()

	logger = logger.With("content_type", category.Name, "index", name)

	s.dropIndex(ctx, logger, name)

	ack, err := s.client.CreateIndex(ctx, name, s.settings)
	switch {
	case err != nil:
		logger.Warn("Failed to create index", "error", err)
		s.debug.Addf("Error while creating index %s: %v.", name, err)
	case !ack:
		s.debug.Addf("Error while creating index %s.", name)
	default:
		s.debug.Addf("Successfully created index %s.", name)
	}

	ack, err = s.client.PutMapping(ctx, name, mapping.Build(category))
	switch {
	case err != nil:
		logger.Warn("Failed to add mapping", "error", err)
		s.debug.Addf("Error while adding mapping for %s: %v.", category.Name, err)
	case !ack:
		s.debug.Addf("Error while adding mapping for %s.", category.Name)
	default:
		s.debug.Addf("Successfully added mapping for %s.", category.Name)
	}

	records, err := s.source.GetRecords(ctx, category.Name, content.Filter{Status: content.StatusPublished})
	if err != nil {
		logger.Error("Failed to load records", "error", err)
		otel.RecordError(span, err)
		s.debug.Addf("Error while loading records for %s: %v.", category.Name, err)
	}

	for _, record := range records {
		body := Transform(category.Fields, record.Fields)
		if _, err := s.client.IndexDocument(ctx, name, record.ID, body); err != nil {
			failed++
			logger.Warn("Failed to index record", "id", record.ID, "error", err)
		}
	}
	imported = len(records)

	if failed > 0 {
		s.debug.Addf("Failed to import %d of %d for %s.", failed, imported, category.Name)
	}
	s.debug.Addf("Imported %d for %s.", imported, category.Name)

	success := err == nil && failed == 0
	s.metrics.RecordReindexDuration(ctx, category.Name, time.Since(start), success)
	s.metrics.RecordDocumentsIndexed(ctx, category.Name, int64(imported-failed), true)
	s.metrics.RecordDocumentsIndexed(ctx, category.Name, int64(failed), false)

	span.SetAttributes(otel.AttrResultCount.Int(imported))
	logger.Info("Imported records", "count", imported, "failed", failed)
	return imported, failed
}

// dropIndex deletes the index when it exists
func (s *Synchronizer) dropIndex(ctx context.Context, logger *slog.Logger, name string) {
	exists, err := s.client.IndexExists(ctx, name)
	if err != nil {
		logger.Warn("Failed to check index", "error", err)
		s.debug.Addf("Error while checking index %s: %v.", name, err)
		return
	}
	if !exists {
		return
	}

	ack, err := s.client.DeleteIndex(ctx, name)
	switch {
	case err != nil:
		logger.Warn("Failed to delete index", "error", err)
		s.debug.Addf("Error while deleting index %s: %v.", name, err)
	case !ack:
		s.debug.Addf("Error while deleting index %s.", name)
	default:
		s.debug.Addf("Successfully deleted index %s.", name)
	}
}

// OnSave writes a record to its index. An existing document is partially
// updated, anything else falls back to a full index request.
//
// Every registry field of the content type is sent. A field absent from
// record.Values is written as null (false for booleans) and replaces the stored
// value, so callers must pass the complete record rather than a changed subset.
func (s *Synchronizer) OnSave(ctx context.Context, record content.Record) (outcome Outcome, err error) {
	name := s.IndexName(record.Category)

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.OnSave", trace.WithAttributes(
		otel.AttrContentType.String(record.Category),
		otel.AttrRecordID.String(record.ID),
		otel.AttrIndexName.String(name),
	))
	defer func() {
		span.SetAttributes(otel.AttrOutcome.String(string(outcome)))
		otel.RecordError(span, err)
		span.End()
		s.metrics.RecordEvent(ctx, record.Category, "save", string(outcome))
	}()

	if !s.registry.IsSearchable(record.Category) {
		return OutcomeSkipped, nil
	}

	body := Transform(s.registry.Fields(record.Category), record.Fields)

	_, getErr := s.client.GetDocument(ctx, name, record.ID)
	if getErr == nil {
		result, err := s.client.UpdateDocument(ctx, name, record.ID, body)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("failed to update %s/%s: %w", name, record.ID, err)
		}
		return outcomeOf(result), nil
	}
	if !errors.Is(getErr, search.ErrNotFound) {
		slog.Debug("Document lookup failed, indexing instead", "index", name, "id", record.ID, "error", getErr)
	}

	result, err := s.client.IndexDocument(ctx, name, record.ID, body)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to index %s/%s: %w", name, record.ID, err)
	}
	return outcomeOf(result), nil
}

// OnDelete removes the document of a record. A document that never existed is not a failure.
func (s *Synchronizer) OnDelete(ctx context.Context, record content.Record) (outcome Outcome, err error) {
	name := s.IndexName(record.Category)

	ctx, span := otel.StartSpan(ctx, s.tracer, "sync.OnDelete", trace.WithAttributes(
		otel.AttrContentType.String(record.Category),
		otel.AttrRecordID.String(record.ID),
		otel.AttrIndexName.String(name),
	))
	defer func() {
		span.SetAttributes(otel.AttrOutcome.String(string(outcome)))
		otel.RecordError(span, err)
		span.End()
		s.metrics.RecordEvent(ctx, record.Category, "delete", string(outcome))
	}()

	if !s.registry.IsSearchable(record.Category) {
		return OutcomeSkipped, nil
	}

	if _, err := s.client.GetDocument(ctx, name, record.ID); err != nil {
		if errors.Is(err, search.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return OutcomeFailed, fmt.Errorf("failed to look up %s/%s: %w", name, record.ID, err)
	}

	result, err := s.client.DeleteDocument(ctx, name, record.ID)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return OutcomeFailed, fmt.Errorf("failed to delete %s/%s: %w", name, record.ID, err)
	}
	switch result {
	case search.ResultDeleted:
		return OutcomeDeleted, nil
	case search.ResultNotFound:
		return OutcomeNotFound, nil
	default:
		return OutcomeFailed, fmt.Errorf("unexpected delete result %q for %s/%s", result, name, record.ID)
	}
}

func outcomeOf(result search.Result) Outcome {
	switch result {
	case search.ResultCreated:
		return OutcomeCreated
	case search.ResultUpdated, search.ResultNoop:
		return OutcomeUpdated
	default:
		return OutcomeFailed
	}
}
