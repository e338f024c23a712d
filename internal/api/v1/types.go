package v1

import (
	"github.com/stacklok/content-search-sync/internal/sync"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string `json:"status" example:"ready"`
}

// VersionResponse represents the version information response
type VersionResponse struct {
	Version   string `json:"version" example:"v0.1.0"`
	Commit    string `json:"commit" example:"abc123def"`
	BuildDate string `json:"build_date" example:"2025-01-15T10:30:00Z"`
	GoVersion string `json:"go_version" example:"go1.25.2"`
	Platform  string `json:"platform" example:"linux/amd64"`
}

// StatusResponse reports the state of the search engine and its indices
type StatusResponse struct {
	Available    bool                                 `json:"available"`
	IndexesExist bool                                 `json:"indexes_exist"`
	Mappings     map[string]map[string]map[string]any `json:"mappings"`
	LastRun      *sync.RunSummary                     `json:"last_run,omitempty"`
	Debug        []string                             `json:"debug"`
}

// ReindexResponse is returned once a full reindex finished
type ReindexResponse struct {
	Debug    []string                             `json:"debug"`
	Mappings map[string]map[string]map[string]any `json:"mappings"`
	Run      *sync.RunSummary                     `json:"run,omitempty"`
}

// FieldResponse describes one field of a content type
type FieldResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ContentTypeResponse describes a content type and the index it is mirrored into
type ContentTypeResponse struct {
	Name       string          `json:"name"`
	Searchable bool            `json:"searchable"`
	Index      string          `json:"index,omitempty"`
	Fields     []FieldResponse `json:"fields"`
	// Mapping is the mapping document a reindex would apply, searchable types only
	Mapping map[string]any `json:"mapping,omitempty"`
}

// ContentTypeListResponse lists every configured content type
type ContentTypeListResponse struct {
	ContentTypes []ContentTypeResponse `json:"content_types"`
}
