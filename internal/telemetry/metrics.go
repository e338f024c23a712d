package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the synchronization metrics meter
	SyncMetricsMeterName = "github.com/stacklok/content-search-sync/sync"
)

// SyncMetrics holds the OpenTelemetry instruments for reindex runs and lifecycle events
type SyncMetrics struct {
	reindexDuration  metric.Float64Histogram
	documentsIndexed metric.Int64Counter
	eventsTotal      metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	reindexDuration, err := meter.Float64Histogram(
		"content_sync_reindex_duration_seconds",
		metric.WithDescription("Duration of a full reindex of one content type in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	documentsIndexed, err := meter.Int64Counter(
		"content_sync_reindex_documents_total",
		metric.WithDescription("Documents written during full reindex runs"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, err
	}

	eventsTotal, err := meter.Int64Counter(
		"content_sync_events_total",
		metric.WithDescription("Lifecycle events handled, by operation and outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		reindexDuration:  reindexDuration,
		documentsIndexed: documentsIndexed,
		eventsTotal:      eventsTotal,
	}, nil
}

// RecordReindexDuration records how long reindexing a content type took
func (m *SyncMetrics) RecordReindexDuration(ctx context.Context, contentType string, duration time.Duration, success bool) {
	if m == nil || m.reindexDuration == nil {
		return
	}

	m.reindexDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.Bool("success", success),
	))
}

// RecordDocumentsIndexed adds count documents to the reindex counter
func (m *SyncMetrics) RecordDocumentsIndexed(ctx context.Context, contentType string, count int64, success bool) {
	if m == nil || m.documentsIndexed == nil || count == 0 {
		return
	}

	m.documentsIndexed.Add(ctx, count, metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.Bool("success", success),
	))
}

// RecordEvent counts one handled save or delete event
func (m *SyncMetrics) RecordEvent(ctx context.Context, contentType, operation, outcome string) {
	if m == nil || m.eventsTotal == nil {
		return
	}

	m.eventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
