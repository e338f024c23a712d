package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/search"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// newTestServer answers every request with the response registered for
// "<METHOD> <path>", or a 404 error envelope when none matches.
func newTestServer(t *testing.T, responses map[string]response) (*Client, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		resp, ok := responses[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`)
			return
		}
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(server.Close)

	client, err := New([]string{server.URL}, WithBasicAuth("elastic", "secret"))
	require.NoError(t, err)
	return client, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

type response struct {
	status int
	body   string
}

func TestNew_RequiresHosts(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.Error(t, err)
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, map[string]response{
		"HEAD /": {status: http.StatusOK},
	})
	assert.NoError(t, client.Ping(context.Background()))

	down, err := New([]string{"http://127.0.0.1:1"})
	require.NoError(t, err)
	assert.Error(t, down.Ping(context.Background()))
}

func TestClient_ServerVersion(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, map[string]response{
		"GET /": {status: http.StatusOK, body: `{"name":"node-1","version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`},
	})
	version, err := client.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.19.0", version)

	empty, _ := newTestServer(t, map[string]response{
		"GET /": {status: http.StatusOK, body: `{"name":"node-1"}`},
	})
	_, err = empty.ServerVersion(context.Background())
	assert.Error(t, err)
}

func TestClient_IndexLifecycle(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, map[string]response{
		"HEAD /site-article":          {status: http.StatusOK},
		"PUT /site-article":           {status: http.StatusOK, body: `{"acknowledged":true,"index":"site-article"}`},
		"DELETE /site-article":        {status: http.StatusOK, body: `{"acknowledged":true}`},
		"PUT /site-article/_mapping":  {status: http.StatusOK, body: `{"acknowledged":false}`},
		"GET /site-article/_mapping": {status: http.StatusOK, body: `{"site-article-v2":{"mappings":{"properties":{"title":{"type":"text"}}}}}`},
	})
	ctx := context.Background()

	exists, err := client.IndexExists(ctx, "site-article")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.IndexExists(ctx, "site-page")
	require.NoError(t, err)
	assert.False(t, exists)

	ack, err := client.CreateIndex(ctx, "site-article", map[string]any{"number_of_shards": 1})
	require.NoError(t, err)
	assert.True(t, ack)

	ack, err = client.DeleteIndex(ctx, "site-article")
	require.NoError(t, err)
	assert.True(t, ack)

	schema := mapping.Build(content.Category{
		Fields:    []content.Field{{Name: "title", Type: content.FieldText}},
		Overrides: map[string]map[string]any{"title": {"type": "text"}},
	})
	ack, err = client.PutMapping(ctx, "site-article", schema)
	require.NoError(t, err)
	assert.False(t, ack)

	current, err := client.GetMapping(ctx, "site-article")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{"title": {"type": "text"}}, current.Properties())

	_, err = client.DeleteIndex(ctx, "site-page")
	assert.ErrorIs(t, err, search.ErrNotFound)

	var respErr *search.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "index_not_found_exception", respErr.Type)

	var createBody, mappingBody map[string]any
	for _, r := range requests() {
		switch {
		case r.Method == http.MethodPut && r.Path == "/site-article":
			createBody = r.Body
		case r.Method == http.MethodPut && strings.HasSuffix(r.Path, "/_mapping"):
			mappingBody = r.Body
		}
	}
	assert.Equal(t, map[string]any{"settings": map[string]any{"number_of_shards": float64(1)}}, createBody)
	assert.Equal(t, map[string]any{"enabled": true}, mappingBody["_source"])
	assert.Equal(t, map[string]any{"title": map[string]any{"type": "text"}}, mappingBody["properties"])
}

func TestClient_Documents(t *testing.T) {
	t.Parallel()

	client, requests := newTestServer(t, map[string]response{
		"GET /site-article/_doc/1": {status: http.StatusOK,
			body: `{"_index":"site-article","_id":"1","found":true,"_source":{"title":"Hello"}}`},
		"GET /site-article/_doc/2":     {status: http.StatusNotFound, body: `{"_index":"site-article","_id":"2","found":false}`},
		"PUT /site-article/_doc/1":     {status: http.StatusCreated, body: `{"result":"created"}`},
		"POST /site-article/_update/1": {status: http.StatusOK, body: `{"result":"noop"}`},
		"DELETE /site-article/_doc/1":  {status: http.StatusOK, body: `{"result":"deleted"}`},
		"DELETE /site-article/_doc/2":  {status: http.StatusNotFound, body: `{"result":"not_found"}`},
	})
	ctx := context.Background()

	doc, err := client.GetDocument(ctx, "site-article", "1")
	require.NoError(t, err)
	assert.Equal(t, &search.Document{Index: "site-article", ID: "1", Source: map[string]any{"title": "Hello"}}, doc)

	_, err = client.GetDocument(ctx, "site-article", "2")
	assert.ErrorIs(t, err, search.ErrNotFound)

	_, err = client.GetDocument(ctx, "site-page", "1")
	assert.ErrorIs(t, err, search.ErrNotFound)

	result, err := client.IndexDocument(ctx, "site-article", "1", map[string]any{"title": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, search.ResultCreated, result)

	result, err = client.UpdateDocument(ctx, "site-article", "1", map[string]any{"title": "Hello"})
	require.NoError(t, err)
	assert.Equal(t, search.ResultNoop, result)

	result, err = client.DeleteDocument(ctx, "site-article", "1")
	require.NoError(t, err)
	assert.Equal(t, search.ResultDeleted, result)

	_, err = client.DeleteDocument(ctx, "site-article", "2")
	assert.ErrorIs(t, err, search.ErrNotFound)

	for _, r := range requests() {
		if r.Path == "/site-article/_update/1" {
			assert.Equal(t, map[string]any{"doc": map[string]any{"title": "Hello"}}, r.Body)
		}
	}
}
