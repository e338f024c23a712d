// Package elastic implements the search document store protocol on top of Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/tidwall/gjson"

	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/search"
)

// Client talks to an Elasticsearch cluster over HTTP
type Client struct {
	es *elasticsearch.Client
}

var _ search.Client = (*Client)(nil)

// Option configures the Elasticsearch client
type Option func(*elasticsearch.Config)

// WithBasicAuth sets credentials for HTTP basic authentication
func WithBasicAuth(username, password string) Option {
	return func(cfg *elasticsearch.Config) {
		cfg.Username = username
		cfg.Password = password
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *elasticsearch.Config) {
		cfg.Transport = rt
	}
}

// New creates a client for the given hosts. Requests are never retried.
func New(hosts []string, opts ...Option) (*Client, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("at least one host is required")
	}

	cfg := elasticsearch.Config{
		Addresses:    hosts,
		DisableRetry: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{es: es}, nil
}

// Ping checks that the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return &search.ResponseError{StatusCode: res.StatusCode}
	}
	return nil
}

// ServerVersion returns the version number reported by the cluster
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to get cluster info: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return "", responseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read cluster info: %w", err)
	}
	number := gjson.GetBytes(data, "version.number").String()
	if number == "" {
		return "", fmt.Errorf("cluster info does not contain a version number")
	}
	return number, nil
}

// IndexExists reports whether the index exists
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", index, err)
	}
	defer closeBody(res)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError(res)
	}
}

// CreateIndex creates an index with the given engine settings
func (c *Client) CreateIndex(ctx context.Context, index string, settings map[string]any) (bool, error) {
	body := map[string]any{}
	if len(settings) > 0 {
		body["settings"] = settings
	}
	payload, err := encode(body)
	if err != nil {
		return false, err
	}

	res, err := c.es.Indices.Create(index,
		c.es.Indices.Create.WithBody(payload),
		c.es.Indices.Create.WithContext(ctx),
	)
	return acknowledged(res, err, "create index "+index)
}

// DeleteIndex deletes an index
func (c *Client) DeleteIndex(ctx context.Context, index string) (bool, error) {
	res, err := c.es.Indices.Delete([]string{index}, c.es.Indices.Delete.WithContext(ctx))
	return acknowledged(res, err, "delete index "+index)
}

// PutMapping applies the schema to an existing index
func (c *Client) PutMapping(ctx context.Context, index string, schema mapping.Schema) (bool, error) {
	payload, err := encode(schema.Map())
	if err != nil {
		return false, err
	}

	res, err := c.es.Indices.PutMapping([]string{index}, payload, c.es.Indices.PutMapping.WithContext(ctx))
	return acknowledged(res, err, "put mapping on "+index)
}

// GetMapping returns the current mapping of an index
func (c *Client) GetMapping(ctx context.Context, index string) (mapping.Schema, error) {
	res, err := c.es.Indices.GetMapping(
		c.es.Indices.GetMapping.WithIndex(index),
		c.es.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return mapping.Schema{}, fmt.Errorf("failed to get mapping of %s: %w", index, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return mapping.Schema{}, responseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return mapping.Schema{}, fmt.Errorf("failed to read mapping response: %w", err)
	}

	// The response is keyed by the concrete index name, which differs from
	// the requested one when an alias is used.
	var doc map[string]any
	gjson.ParseBytes(data).ForEach(func(_, value gjson.Result) bool {
		raw := value.Get("mappings").Raw
		if raw != "" {
			err = json.Unmarshal([]byte(raw), &doc)
		}
		return false
	})
	if err != nil {
		return mapping.Schema{}, fmt.Errorf("failed to decode mapping of %s: %w", index, err)
	}

	return mapping.FromMap(doc), nil
}

// GetDocument fetches a document by ID
func (c *Client) GetDocument(ctx context.Context, index, id string) (*search.Document, error) {
	res, err := c.es.Get(index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", index, id, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, responseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document response: %w", err)
	}
	if !gjson.GetBytes(data, "found").Bool() {
		return nil, search.ErrNotFound
	}

	var source map[string]any
	if raw := gjson.GetBytes(data, "_source").Raw; raw != "" {
		if err := json.Unmarshal([]byte(raw), &source); err != nil {
			return nil, fmt.Errorf("failed to decode document source: %w", err)
		}
	}

	return &search.Document{
		Index:  gjson.GetBytes(data, "_index").String(),
		ID:     gjson.GetBytes(data, "_id").String(),
		Source: source,
	}, nil
}

// IndexDocument creates or replaces a document
func (c *Client) IndexDocument(ctx context.Context, index, id string, body map[string]any) (search.Result, error) {
	payload, err := encode(body)
	if err != nil {
		return "", err
	}

	res, err := c.es.Index(index, payload,
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	return result(res, err, "index document "+id)
}

// UpdateDocument merges partial into an existing document
func (c *Client) UpdateDocument(ctx context.Context, index, id string, partial map[string]any) (search.Result, error) {
	payload, err := encode(map[string]any{"doc": partial})
	if err != nil {
		return "", err
	}

	res, err := c.es.Update(index, id, payload, c.es.Update.WithContext(ctx))
	return result(res, err, "update document "+id)
}

// DeleteDocument deletes a document by ID
func (c *Client) DeleteDocument(ctx context.Context, index, id string) (search.Result, error) {
	res, err := c.es.Delete(index, id, c.es.Delete.WithContext(ctx))
	return result(res, err, "delete document "+id)
}

func encode(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return &buf, nil
}

func acknowledged(res *esapi.Response, err error, op string) (bool, error) {
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return false, responseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read %s response: %w", op, err)
	}
	return gjson.GetBytes(data, "acknowledged").Bool(), nil
}

func result(res *esapi.Response, err error, op string) (search.Result, error) {
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", op, err)
	}
	defer closeBody(res)

	if res.IsError() {
		return "", responseError(res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s response: %w", op, err)
	}
	return search.Result(gjson.GetBytes(data, "result").String()), nil
}

// responseError reads the engine error envelope. The body is consumed.
func responseError(res *esapi.Response) error {
	data, _ := io.ReadAll(res.Body)
	return &search.ResponseError{
		StatusCode: res.StatusCode,
		Type:       gjson.GetBytes(data, "error.type").String(),
		Reason:     gjson.GetBytes(data, "error.reason").String(),
	}
}

func closeBody(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	if err := res.Body.Close(); err != nil {
		slog.Debug("Failed to close response body", "error", err)
	}
}
