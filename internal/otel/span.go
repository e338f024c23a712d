// Package otel provides span helpers and shared attribute keys for tracing
// synchronization work.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by all sync spans
const (
	AttrContentType = attribute.Key("content.type")
	AttrRecordID    = attribute.Key("content.id")
	AttrIndexName   = attribute.Key("search.index")
	AttrRunID       = attribute.Key("reindex.run_id")
	AttrResultCount = attribute.Key("result.count")
	AttrOutcome     = attribute.Key("sync.outcome")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks the span as failed. The status description stays generic;
// the error itself is attached as a span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
