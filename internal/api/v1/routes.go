// Package v1 provides the JSON API for inspecting and rebuilding the search indices.
package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/content-search-sync/internal/api/common"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/sync"
)

// Routes holds the dependencies of the v1 handlers
type Routes struct {
	svc       sync.Service
	registry  content.TypeRegistry
	reindexer *common.Reindexer
}

// NewRoutes creates a new Routes instance
func NewRoutes(svc sync.Service, registry content.TypeRegistry, reindexer *common.Reindexer) *Routes {
	return &Routes{
		svc:       svc,
		registry:  registry,
		reindexer: reindexer,
	}
}

// Router creates the router mounted at /api/v1
func Router(svc sync.Service, registry content.TypeRegistry, reindexer *common.Reindexer) http.Handler {
	routes := NewRoutes(svc, registry, reindexer)

	r := chi.NewRouter()
	r.Get("/status", routes.getStatus)
	r.Post("/reindex", routes.reindex)
	r.Get("/types", routes.listTypes)
	r.Get("/types/{name}", routes.getType)

	return r
}

// getStatus handles GET /api/v1/status
//
// @Summary		Search engine status
// @Description	Engine availability, index existence, current mappings and the last reindex
// @Tags			sync
// @Produce		json
// @Success		200	{object}	StatusResponse
// @Router			/api/v1/status [get]
func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{
		Mappings: map[string]map[string]map[string]any{},
		LastRun:  rr.svc.LastRun(),
		Debug:    rr.svc.DebugLog(),
	}

	resp.Available = rr.svc.IsAvailable(ctx)
	if resp.Available {
		resp.IndexesExist = rr.svc.IndexesExist(ctx)
		if resp.IndexesExist {
			resp.Mappings = properties(rr.svc.Mappings(ctx))
		}
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// reindex handles POST /api/v1/reindex
//
// @Summary		Rebuild all indices
// @Description	Drops, recreates and reloads the index of every searchable content type
// @Tags			sync
// @Produce		json
// @Success		200	{object}	ReindexResponse
// @Failure		503	{object}	common.ErrorResponse
// @Router			/api/v1/reindex [post]
func (rr *Routes) reindex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !rr.svc.IsAvailable(ctx) {
		common.WriteErrorResponse(w, "search engine is not available", http.StatusServiceUnavailable)
		return
	}

	lines, err := rr.reindexer.Run(ctx)
	if err != nil {
		slog.Warn("Reindex request ended before the run finished", "error", err)
		common.WriteErrorResponse(w, "reindex is still running", http.StatusServiceUnavailable)
		return
	}

	common.WriteJSONResponse(w, ReindexResponse{
		Debug:    lines,
		Mappings: properties(rr.svc.Mappings(ctx)),
		Run:      rr.svc.LastRun(),
	}, http.StatusOK)
}

// listTypes handles GET /api/v1/types
//
// @Summary		List content types
// @Tags			types
// @Produce		json
// @Success		200	{object}	ContentTypeListResponse
// @Router			/api/v1/types [get]
func (rr *Routes) listTypes(w http.ResponseWriter, _ *http.Request) {
	categories := rr.registry.Categories()
	resp := ContentTypeListResponse{ContentTypes: make([]ContentTypeResponse, 0, len(categories))}
	for _, category := range categories {
		resp.ContentTypes = append(resp.ContentTypes, rr.describe(category, false))
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getType handles GET /api/v1/types/{name}
//
// @Summary		Get a content type
// @Description	Fields of a content type and the mapping a reindex would apply
// @Tags			types
// @Produce		json
// @Param			name	path		string	true	"Content type name"
// @Success		200		{object}	ContentTypeResponse
// @Failure		400		{object}	common.ErrorResponse
// @Failure		404		{object}	common.ErrorResponse
// @Router			/api/v1/types/{name} [get]
func (rr *Routes) getType(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetAndValidateURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := rr.registry.Category(name)
	if err != nil {
		if errors.Is(err, content.ErrUnknownCategory) {
			common.WriteErrorResponse(w, "content type not found: "+name, http.StatusNotFound)
			return
		}
		common.WriteErrorResponse(w, "failed to get content type", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, rr.describe(category, true), http.StatusOK)
}

func (rr *Routes) describe(category content.Category, withMapping bool) ContentTypeResponse {
	resp := ContentTypeResponse{
		Name:       category.Name,
		Searchable: category.Searchable,
		Fields:     make([]FieldResponse, 0, len(category.Fields)),
	}
	for _, field := range category.Fields {
		resp.Fields = append(resp.Fields, FieldResponse{Name: field.Name, Type: string(field.Type)})
	}
	if category.Searchable {
		resp.Index = rr.svc.IndexName(category.Name)
		if withMapping {
			resp.Mapping = mapping.BuildFor(rr.registry, category.Name).Map()
		}
	}
	return resp
}

// properties flattens schemas into their per field entries, keyed by index name
func properties(schemas map[string]mapping.Schema) map[string]map[string]map[string]any {
	out := make(map[string]map[string]map[string]any, len(schemas))
	for index, schema := range schemas {
		out[index] = schema.Properties()
	}
	return out
}
