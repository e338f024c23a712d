// Package webhook receives content lifecycle events over HTTP and hands them
// to the event subscriber.
package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/content-search-sync/internal/api/common"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/events"
	"github.com/stacklok/content-search-sync/internal/sync"
)

// MaxBodyBytes bounds the size of an event payload
const MaxBodyBytes = 1 << 20

const (
	operationSave   = "save"
	operationDelete = "delete"
)

//go:generate mockgen -destination=mocks/mock_routes.go -package=mocks -source=routes.go

// Handler applies a decoded event and reports the outcome
type Handler interface {
	Save(ctx context.Context, record content.Record) (sync.Outcome, error)
	Delete(ctx context.Context, record content.Record) (sync.Outcome, error)
}

var _ Handler = (*events.Subscriber)(nil)

// EventResponse is returned for every accepted event
type EventResponse struct {
	Outcome     sync.Outcome `json:"outcome"`
	ContentType string       `json:"content_type"`
	ID          string       `json:"id"`
	Error       string       `json:"error,omitempty"`
}

// Routes holds the webhook dependencies
type Routes struct {
	handler  Handler
	registry content.TypeRegistry
}

// Router creates the router mounted at /events
func Router(handler Handler, registry content.TypeRegistry) http.Handler {
	routes := &Routes{handler: handler, registry: registry}

	r := chi.NewRouter()
	r.Post("/{operation}", routes.handleEvent)
	return r
}

// handleEvent handles POST /events/{operation}
//
// @Summary		Content event
// @Description	Mirror a saved record into the index or remove a deleted one
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			operation	path		string	true	"Event type"	Enums(save,delete)
// @Success		202			{object}	EventResponse
// @Failure		400			{object}	common.ErrorResponse
// @Failure		404			{object}	common.ErrorResponse
// @Failure		413			{object}	common.ErrorResponse
// @Router			/events/{operation} [post]
func (rr *Routes) handleEvent(w http.ResponseWriter, r *http.Request) {
	operation := chi.URLParam(r, "operation")
	if operation != operationSave && operation != operationDelete {
		common.WriteErrorResponse(w, "unknown event: "+operation, http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteErrorResponse(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		common.WriteErrorResponse(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	record, err := events.DecodePayload(data, rr.registry)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var outcome sync.Outcome
	if operation == operationSave {
		outcome, err = rr.handler.Save(r.Context(), record)
	} else {
		outcome, err = rr.handler.Delete(r.Context(), record)
	}

	// The event was received either way; failures are reported in the body
	resp := EventResponse{Outcome: outcome, ContentType: record.Category, ID: record.ID}
	if err != nil {
		resp.Error = err.Error()
	}
	common.WriteJSONResponse(w, resp, http.StatusAccepted)
}
