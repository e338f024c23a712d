package events

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	gosync "sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/stacklok/content-search-sync/internal/content"
)

// ErrInvalidPayload is returned for webhook bodies that fail schema validation
var ErrInvalidPayload = errors.New("invalid event payload")

const payloadSchemaURL = "payload.schema.json"

//go:embed schema/payload.schema.json
var payloadSchema []byte

var (
	compileOnce    gosync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Payload is the webhook body of a save or delete event
type Payload struct {
	ContentType string        `json:"contentType"`
	Record      RecordPayload `json:"record"`
}

// RecordPayload carries the record part of an event
type RecordPayload struct {
	ID     json.RawMessage `json:"id"`
	Status content.Status  `json:"status,omitempty"`
	Fields map[string]any  `json:"fields,omitempty"`
}

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payloadSchema))
		if err != nil {
			compileErr = fmt.Errorf("failed to parse payload schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(payloadSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("failed to add payload schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(payloadSchemaURL)
	})
	return compiledSchema, compileErr
}

// DecodePayload validates a webhook body and converts it into a record.
// Datetime fields of known content types are parsed into time values so they
// survive coercion.
func DecodePayload(data []byte, registry content.TypeRegistry) (content.Record, error) {
	sch, err := schema()
	if err != nil {
		return content.Record{}, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return content.Record{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := sch.Validate(inst); err != nil {
		return content.Record{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return content.Record{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return content.Record{
		ID:       recordID(p.Record.ID),
		Category: p.ContentType,
		Status:   p.Record.Status,
		Fields:   content.Hydrate(registry.Fields(p.ContentType), p.Record.Fields),
	}, nil
}

// recordID accepts numeric and string IDs. The schema guarantees one of the two.
func recordID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
