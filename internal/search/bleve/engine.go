// Package bleve implements the search document store protocol on embedded
// bleve indices, one directory per index under a base path. It serves local
// development and tests where running Elasticsearch is impractical.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	blevemapping "github.com/blevesearch/bleve/v2/mapping"
	index "github.com/blevesearch/bleve_index_api"

	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/search"
)

const (
	// sourceField holds the JSON encoded document body as a stored, unindexed field
	sourceField = "_source"

	indexSuffix = ".bleve"
	metaSuffix  = ".meta.json"
)

// Engine manages bleve indices below a base directory
type Engine struct {
	basePath string

	mu      sync.Mutex
	indices map[string]bleve.Index
}

var _ search.Client = (*Engine)(nil)

// indexMeta is persisted next to every index so mappings can be read back
type indexMeta struct {
	Settings map[string]any `json:"settings,omitempty"`
	Mappings map[string]any `json:"mappings"`
}

// New creates an engine rooted at basePath. The directory is created when missing.
func New(basePath string) (*Engine, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path is required")
	}
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create index directory %s: %w", basePath, err)
	}
	return &Engine{
		basePath: basePath,
		indices:  map[string]bleve.Index{},
	}, nil
}

// Close closes every open index
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	for name, idx := range e.indices {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close index %s: %w", name, err))
		}
		delete(e.indices, name)
	}
	return errors.Join(errs...)
}

// Ping checks that the base directory is still accessible
func (e *Engine) Ping(_ context.Context) error {
	info, err := os.Stat(e.basePath)
	if err != nil {
		return fmt.Errorf("index directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("index path %s is not a directory", e.basePath)
	}
	return nil
}

// IndexExists reports whether the index directory exists
func (e *Engine) IndexExists(_ context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	_, err := os.Stat(e.indexPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat index %s: %w", name, err)
	}
	return true, nil
}

// CreateIndex creates an empty index with dynamic field mapping
func (e *Engine) CreateIndex(ctx context.Context, name string, settings map[string]any) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, &search.ResponseError{
			StatusCode: 400,
			Type:       "resource_already_exists_exception",
			Reason:     fmt.Sprintf("index [%s] already exists", name),
		}
	}

	if err := e.createWithMeta(name, settings); err != nil {
		return false, err
	}
	return true, nil
}

// createWithMeta creates an index with dynamic mapping and records its settings. Callers hold e.mu.
func (e *Engine) createWithMeta(name string, settings map[string]any) error {
	schema := mapping.Schema{}
	if err := e.create(name, schema); err != nil {
		return err
	}
	return e.writeMeta(name, indexMeta{Settings: settings, Mappings: schema.Map()})
}

// DeleteIndex closes and removes an index
func (e *Engine) DeleteIndex(ctx context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, indexNotFound(name)
	}

	if err := e.remove(name); err != nil {
		return false, err
	}
	if err := os.Remove(e.metaPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to remove metadata of %s: %w", name, err)
	}
	return true, nil
}

// PutMapping applies field mappings to an index. Bleve mappings are fixed at
// creation time, so the index is rebuilt, which is only allowed while it is empty.
func (e *Engine) PutMapping(ctx context.Context, name string, schema mapping.Schema) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, indexNotFound(name)
	}

	idx, err := e.open(name)
	if err != nil {
		return false, err
	}
	count, err := idx.DocCount()
	if err != nil {
		return false, fmt.Errorf("failed to count documents in %s: %w", name, err)
	}
	if count > 0 {
		return false, &search.ResponseError{
			StatusCode: 400,
			Type:       "illegal_argument_exception",
			Reason:     fmt.Sprintf("cannot change the mapping of non-empty index [%s]", name),
		}
	}

	meta, err := e.readMeta(name)
	if err != nil {
		return false, err
	}
	if err := e.remove(name); err != nil {
		return false, err
	}
	if err := e.create(name, schema); err != nil {
		return false, err
	}

	meta.Mappings = schema.Map()
	if err := e.writeMeta(name, meta); err != nil {
		return false, err
	}
	return true, nil
}

// GetMapping returns the mapping last applied to the index
func (e *Engine) GetMapping(ctx context.Context, name string) (mapping.Schema, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return mapping.Schema{}, err
	}
	if !exists {
		return mapping.Schema{}, indexNotFound(name)
	}

	meta, err := e.readMeta(name)
	if err != nil {
		return mapping.Schema{}, err
	}
	return mapping.FromMap(meta.Mappings), nil
}

// GetDocument returns the stored body of a document
func (e *Engine) GetDocument(ctx context.Context, name, id string) (*search.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	source, err := e.source(ctx, name, id)
	if err != nil {
		return nil, err
	}
	return &search.Document{Index: name, ID: id, Source: source}, nil
}

// IndexDocument creates or replaces a document. A missing index is created
// with dynamic mapping.
func (e *Engine) IndexDocument(ctx context.Context, name, id string, body map[string]any) (search.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := e.createWithMeta(name, nil); err != nil {
			return "", err
		}
	}

	_, err = e.source(ctx, name, id)
	switch {
	case errors.Is(err, errDocumentNotFound):
		if err := e.write(name, id, body); err != nil {
			return "", err
		}
		return search.ResultCreated, nil
	case err != nil:
		return "", err
	}

	if err := e.write(name, id, body); err != nil {
		return "", err
	}
	return search.ResultUpdated, nil
}

// UpdateDocument merges partial into the stored body. Updates that change
// nothing report noop.
func (e *Engine) UpdateDocument(ctx context.Context, name, id string, partial map[string]any) (search.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.source(ctx, name, id)
	if err != nil {
		return "", err
	}

	merged := maps.Clone(current)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range normalize(partial) {
		merged[k] = v
	}
	if reflect.DeepEqual(merged, current) {
		return search.ResultNoop, nil
	}

	if err := e.write(name, id, merged); err != nil {
		return "", err
	}
	return search.ResultUpdated, nil
}

// DeleteDocument removes a document
func (e *Engine) DeleteDocument(ctx context.Context, name, id string) (search.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.source(ctx, name, id); err != nil {
		return "", err
	}

	idx, err := e.open(name)
	if err != nil {
		return "", err
	}
	if err := idx.Delete(id); err != nil {
		return "", fmt.Errorf("failed to delete document %s from %s: %w", id, name, err)
	}
	return search.ResultDeleted, nil
}

var errDocumentNotFound = fmt.Errorf("document %w", search.ErrNotFound)

// source loads the stored body of a document. Callers hold e.mu.
func (e *Engine) source(ctx context.Context, name, id string) (map[string]any, error) {
	exists, err := e.IndexExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, indexNotFound(name)
	}

	idx, err := e.open(name)
	if err != nil {
		return nil, err
	}

	doc, err := idx.Document(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s from %s: %w", id, name, err)
	}
	if doc == nil {
		return nil, errDocumentNotFound
	}

	var raw []byte
	doc.VisitFields(func(f index.Field) {
		if f.Name() == sourceField {
			raw = f.Value()
		}
	})

	source := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &source); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
	}
	return source, nil
}

// write indexes body together with its JSON encoding. Callers hold e.mu.
func (e *Engine) write(name, id string, body map[string]any) error {
	idx, err := e.open(name)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", id, err)
	}

	data := make(map[string]any, len(body)+1)
	for k, v := range body {
		data[k] = v
	}
	data[sourceField] = string(raw)

	if err := idx.Index(id, data); err != nil {
		return fmt.Errorf("failed to index document %s into %s: %w", id, name, err)
	}
	return nil
}

// open returns a cached handle, opening the index on first use. Callers hold e.mu.
func (e *Engine) open(name string) (bleve.Index, error) {
	if idx, ok := e.indices[name]; ok {
		return idx, nil
	}
	idx, err := bleve.Open(e.indexPath(name))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, indexNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", name, err)
	}
	e.indices[name] = idx
	return idx, nil
}

// create builds a new index on disk. Callers hold e.mu.
func (e *Engine) create(name string, schema mapping.Schema) error {
	idx, err := bleve.New(e.indexPath(name), indexMapping(schema))
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	e.indices[name] = idx
	slog.Debug("Created bleve index", "index", name, "path", e.indexPath(name))
	return nil
}

// remove closes and deletes an index directory. Callers hold e.mu.
func (e *Engine) remove(name string) error {
	if idx, ok := e.indices[name]; ok {
		if err := idx.Close(); err != nil {
			return fmt.Errorf("failed to close index %s: %w", name, err)
		}
		delete(e.indices, name)
	}
	if err := os.RemoveAll(e.indexPath(name)); err != nil {
		return fmt.Errorf("failed to remove index %s: %w", name, err)
	}
	return nil
}

func (e *Engine) readMeta(name string) (indexMeta, error) {
	var meta indexMeta
	data, err := os.ReadFile(e.metaPath(name))
	if errors.Is(err, os.ErrNotExist) {
		return indexMeta{Mappings: mapping.Schema{}.Map()}, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata of %s: %w", name, err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to decode metadata of %s: %w", name, err)
	}
	return meta, nil
}

func (e *Engine) writeMeta(name string, meta indexMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata of %s: %w", name, err)
	}
	if err := os.WriteFile(e.metaPath(name), data, 0o600); err != nil {
		return fmt.Errorf("failed to write metadata of %s: %w", name, err)
	}
	return nil
}

func (e *Engine) indexPath(name string) string {
	return filepath.Join(e.basePath, name+indexSuffix)
}

func (e *Engine) metaPath(name string) string {
	return filepath.Join(e.basePath, name+metaSuffix)
}

// indexMapping translates schema properties into bleve field mappings.
// Properties without a recognised type stay dynamic.
func indexMapping(schema mapping.Schema) *blevemapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.IncludeTermVectors = false
	source.DocValues = false
	im.DefaultMapping.AddFieldMappingsAt(sourceField, source)

	for name, property := range schema.Properties() {
		typ, _ := property["type"].(string)
		switch typ {
		case "date":
			im.DefaultMapping.AddFieldMappingsAt(name, bleve.NewDateTimeFieldMapping())
		case "text":
			im.DefaultMapping.AddFieldMappingsAt(name, bleve.NewTextFieldMapping())
		case "keyword":
			fm := bleve.NewTextFieldMapping()
			fm.Analyzer = keyword.Name
			im.DefaultMapping.AddFieldMappingsAt(name, fm)
		case "boolean":
			im.DefaultMapping.AddFieldMappingsAt(name, bleve.NewBooleanFieldMapping())
		case "long", "integer", "short", "byte", "double", "float", "half_float", "scaled_float":
			im.DefaultMapping.AddFieldMappingsAt(name, bleve.NewNumericFieldMapping())
		}
	}
	return im
}

// normalize round-trips a body through JSON so comparisons see the same
// types the stored copy decodes to.
func normalize(body map[string]any) map[string]any {
	raw, err := json.Marshal(body)
	if err != nil {
		return body
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return body
	}
	return out
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "_") {
		return &search.ResponseError{
			StatusCode: 400,
			Type:       "invalid_index_name_exception",
			Reason:     fmt.Sprintf("invalid index name [%s]", name),
		}
	}
	return nil
}

func indexNotFound(name string) error {
	return &search.ResponseError{
		StatusCode: 404,
		Type:       "index_not_found_exception",
		Reason:     fmt.Sprintf("no such index [%s]", name),
	}
}
