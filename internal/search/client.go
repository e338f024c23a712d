// Package search defines the document store protocol used to mirror content
// into a search engine. Engine implementations live in subpackages.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/content-search-sync/internal/mapping"
)

// ErrNotFound is returned when an index or document does not exist
var ErrNotFound = errors.New("not found")

// Result is the outcome reported by the engine for a document write
type Result string

// Document write results
const (
	ResultCreated  Result = "created"
	ResultUpdated  Result = "updated"
	ResultDeleted  Result = "deleted"
	ResultNoop     Result = "noop"
	ResultNotFound Result = "not_found"
)

// Document is a stored search document
type Document struct {
	Index  string
	ID     string
	Source map[string]any
}

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go

// Client is the document store protocol of a search engine.
// Acknowledged results report whether the engine confirmed an index level change.
type Client interface {
	// Ping returns nil when the engine is reachable
	Ping(ctx context.Context) error

	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, settings map[string]any) (acknowledged bool, err error)
	DeleteIndex(ctx context.Context, index string) (acknowledged bool, err error)
	PutMapping(ctx context.Context, index string, schema mapping.Schema) (acknowledged bool, err error)
	GetMapping(ctx context.Context, index string) (mapping.Schema, error)

	// GetDocument returns ErrNotFound when the index or the document does not exist
	GetDocument(ctx context.Context, index, id string) (*Document, error)
	IndexDocument(ctx context.Context, index, id string, body map[string]any) (Result, error)
	// UpdateDocument merges partial into the stored document
	UpdateDocument(ctx context.Context, index, id string, partial map[string]any) (Result, error)
	DeleteDocument(ctx context.Context, index, id string) (Result, error)
}

// ResponseError is an error response returned by the engine
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

// Error implements the error interface
func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("search engine returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("search engine returned status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

// Is reports 404 responses as ErrNotFound
func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
