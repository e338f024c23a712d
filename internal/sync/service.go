package sync

import (
	"context"

	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/mapping"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go

// Service is the synchronization surface served over HTTP
type Service interface {
	IsAvailable(ctx context.Context) bool
	IndexesExist(ctx context.Context) bool
	Mappings(ctx context.Context) map[string]mapping.Schema
	IndexName(category string) string
	DebugLog() []string
	LastRun() *RunSummary
	ReindexAll(ctx context.Context) []string
	OnSave(ctx context.Context, record content.Record) (Outcome, error)
	OnDelete(ctx context.Context, record content.Record) (Outcome, error)
}

var _ Service = (*Synchronizer)(nil)
