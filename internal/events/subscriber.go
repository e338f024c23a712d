// Package events bridges content lifecycle notifications to the synchronizer.
// Hosts call a Listener directly; the HTTP webhooks decode their payloads here.
package events

import (
	"context"
	"log/slog"

	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/sync"
)

// LevelCritical is logged when a record could not be mirrored into the index
const LevelCritical = slog.Level(12)

// Listener receives content lifecycle events. Implementations never fail the caller.
type Listener interface {
	OnSave(ctx context.Context, record content.Record)
	OnDelete(ctx context.Context, record content.Record)
}

//go:generate mockgen -destination=mocks/mock_subscriber.go -package=mocks -source=subscriber.go

// Synchronizer applies single record changes to the search index
type Synchronizer interface {
	OnSave(ctx context.Context, record content.Record) (sync.Outcome, error)
	OnDelete(ctx context.Context, record content.Record) (sync.Outcome, error)
}

// Subscriber forwards events to a Synchronizer and logs what happened
type Subscriber struct {
	sync   Synchronizer
	logger *slog.Logger
}

var _ Listener = (*Subscriber)(nil)

// NewSubscriber creates a Subscriber. A nil logger uses slog.Default.
func NewSubscriber(s Synchronizer, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{sync: s, logger: logger}
}

// OnSave mirrors a saved record
func (s *Subscriber) OnSave(ctx context.Context, record content.Record) {
	_, _ = s.Save(ctx, record)
}

// OnDelete removes a deleted record from the index
func (s *Subscriber) OnDelete(ctx context.Context, record content.Record) {
	_, _ = s.Delete(ctx, record)
}

// Save mirrors a saved record and returns the outcome for callers that report it
func (s *Subscriber) Save(ctx context.Context, record content.Record) (sync.Outcome, error) {
	outcome, err := s.sync.OnSave(ctx, record)
	attrs := []any{"content_type", record.Category, "id", record.ID}

	switch outcome {
	case sync.OutcomeUpdated:
		s.logger.InfoContext(ctx, "Saved "+record.Category+": "+record.ID, attrs...)
	case sync.OutcomeCreated:
		s.logger.InfoContext(ctx, "Created "+record.Category+": "+record.ID, attrs...)
	case sync.OutcomeSkipped:
		s.logger.DebugContext(ctx, "Content type not searchable", attrs...)
	default:
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		s.logger.Log(ctx, LevelCritical, "Failed to save "+record.Category+": "+record.ID, attrs...)
	}
	return outcome, err
}

// Delete removes a record and returns the outcome for callers that report it
func (s *Subscriber) Delete(ctx context.Context, record content.Record) (sync.Outcome, error) {
	outcome, err := s.sync.OnDelete(ctx, record)
	attrs := []any{"content_type", record.Category, "id", record.ID}

	switch outcome {
	case sync.OutcomeDeleted:
		s.logger.InfoContext(ctx, "Deleted "+record.Category+": "+record.ID, attrs...)
	case sync.OutcomeSkipped:
		s.logger.DebugContext(ctx, "Content type not searchable", attrs...)
	case sync.OutcomeNotFound:
		s.logger.DebugContext(ctx, "Nothing to delete", attrs...)
	default:
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		s.logger.Log(ctx, LevelCritical, "Failed to delete "+record.Category+" with ID: "+record.ID, attrs...)
	}
	return outcome, err
}
