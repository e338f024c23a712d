// Package content defines the CMS content model mirrored into the search index:
// content types and their fields, records, and the read-only collaborators
// that supply them.
package content

import (
	"context"
	"errors"
)

// ErrUnknownCategory is returned when a content type is not configured
var ErrUnknownCategory = errors.New("unknown content type")

// FieldType is the storage type of a content field as declared by the CMS
type FieldType string

// Known field types. Any other value is allowed and passes through unchanged.
const (
	FieldText     FieldType = "text"
	FieldString   FieldType = "string"
	FieldHTML     FieldType = "html"
	FieldMarkdown FieldType = "markdown"
	FieldTextarea FieldType = "textarea"
	FieldInteger  FieldType = "integer"
	FieldFloat    FieldType = "float"
	FieldDatetime FieldType = "datetime"
	FieldDate     FieldType = "date"
	FieldBoolean  FieldType = "boolean"
	FieldJSON     FieldType = "json"
	FieldNull     FieldType = "null"
)

// Field is one named, typed field of a content type
type Field struct {
	Name string
	Type FieldType
}

// Category is a named content kind such as "article" or "page".
// Categories are loaded from configuration and never modified afterwards.
type Category struct {
	Name       string
	Fields     []Field
	Searchable bool
	// Overrides maps field names to index mapping entries used verbatim
	Overrides map[string]map[string]any
}

// Status is the publication status of a record
type Status string

// Publication statuses
const (
	StatusPublished Status = "published"
	StatusHeld      Status = "held"
	StatusDraft     Status = "draft"
	StatusTimed     Status = "timed"
)

// Valid reports whether s is one of the known publication statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusHeld, StatusDraft, StatusTimed:
		return true
	}
	return false
}

// Record is one content item. Its ID is stable for the lifetime of the item
// and becomes the search document ID.
type Record struct {
	ID       string
	Category string
	Status   Status
	Fields   map[string]any
}

// Filter narrows the records returned by a Source. Zero values match everything.
type Filter struct {
	Status Status
}

// Matches reports whether r passes the filter
func (f Filter) Matches(r Record) bool {
	return f.Status == "" || f.Status == r.Status
}

//go:generate mockgen -destination=mocks/mock_content.go -package=mocks -source=types.go

// TypeRegistry supplies the fields of every content type and whether it is searchable
type TypeRegistry interface {
	// Categories returns every configured content type sorted by name
	Categories() []Category
	// Category returns a single content type or ErrUnknownCategory
	Category(name string) (Category, error)
	// Fields returns the ordered fields of a content type, empty when unknown
	Fields(name string) []Field
	// IsSearchable reports whether records of the content type are indexed
	IsSearchable(name string) bool
}

// Source supplies records of a content type in a stable order
type Source interface {
	GetRecords(ctx context.Context, category string, filter Filter) ([]Record, error)
}
