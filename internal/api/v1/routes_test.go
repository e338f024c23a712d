package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/content-search-sync/internal/api/common"
	v1 "github.com/stacklok/content-search-sync/internal/api/v1"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/sync"
	"github.com/stacklok/content-search-sync/internal/sync/mocks"
)

func testRegistry() content.TypeRegistry {
	return content.NewStaticRegistry(
		content.Category{
			Name:       "article",
			Searchable: true,
			Fields: []content.Field{
				{Name: "title", Type: content.FieldText},
				{Name: "publishedAt", Type: content.FieldDatetime},
			},
			Overrides: map[string]map[string]any{"title": {"type": "text", "analyzer": "english"}},
		},
		content.Category{Name: "news", Fields: []content.Field{{Name: "body", Type: content.FieldHTML}}},
	)
}

func newRouter(svc sync.Service) http.Handler {
	return v1.Router(svc, testRegistry(), common.NewReindexer(svc, time.Minute))
}

func serve(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func articleSchema() mapping.Schema {
	return mapping.FromMap(map[string]any{
		"properties": map[string]any{"title": map[string]any{"type": "text"}},
	})
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	run := &sync.RunSummary{ID: "run-1", ContentTypes: 1, Imported: 3}

	tests := []struct {
		name      string
		setupMock func(*mocks.MockService)
		want      string
	}{
		{
			name: "engine unavailable",
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().IsAvailable(gomock.Any()).Return(false)
				m.EXPECT().LastRun().Return(nil)
				m.EXPECT().DebugLog().Return(nil)
			},
			want: `{"available":false,"indexes_exist":false,"mappings":{},"debug":null}`,
		},
		{
			name: "no index yet",
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().IsAvailable(gomock.Any()).Return(true)
				m.EXPECT().IndexesExist(gomock.Any()).Return(false)
				m.EXPECT().LastRun().Return(nil)
				m.EXPECT().DebugLog().Return([]string{})
			},
			want: `{"available":true,"indexes_exist":false,"mappings":{},"debug":[]}`,
		},
		{
			name: "indices with mappings",
			setupMock: func(m *mocks.MockService) {
				m.EXPECT().IsAvailable(gomock.Any()).Return(true)
				m.EXPECT().IndexesExist(gomock.Any()).Return(true)
				m.EXPECT().Mappings(gomock.Any()).Return(map[string]mapping.Schema{"site-article": articleSchema()})
				m.EXPECT().LastRun().Return(run)
				m.EXPECT().DebugLog().Return([]string{"Imported 3 for article."})
			},
			want: `{
				"available": true,
				"indexes_exist": true,
				"mappings": {"site-article": {"title": {"type": "text"}}},
				"last_run": {"id": "run-1", "started_at": "0001-01-01T00:00:00Z", "duration": 0, "content_types": 1, "imported": 3, "failed": 0},
				"debug": ["Imported 3 for article."]
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := mocks.NewMockService(ctrl)
			tt.setupMock(svc)

			rr := serve(t, newRouter(svc), http.MethodGet, "/status")
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, tt.want, rr.Body.String())
		})
	}
}

func TestReindex(t *testing.T) {
	t.Parallel()

	t.Run("runs and reports", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		svc := mocks.NewMockService(ctrl)
		gomock.InOrder(
			svc.EXPECT().IsAvailable(gomock.Any()).Return(true),
			svc.EXPECT().ReindexAll(gomock.Any()).Return([]string{"Successfully created index site-article.", "Imported 0 for article."}),
			svc.EXPECT().Mappings(gomock.Any()).Return(map[string]mapping.Schema{"site-article": articleSchema()}),
			svc.EXPECT().LastRun().Return(&sync.RunSummary{ID: "run-2"}),
		)

		rr := serve(t, newRouter(svc), http.MethodPost, "/reindex")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp v1.ReindexResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, []string{"Successfully created index site-article.", "Imported 0 for article."}, resp.Debug)
		assert.Equal(t, map[string]any{"type": "text"}, resp.Mappings["site-article"]["title"])
		require.NotNil(t, resp.Run)
		assert.Equal(t, "run-2", resp.Run.ID)
	})

	t.Run("engine unavailable", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().IsAvailable(gomock.Any()).Return(false)

		rr := serve(t, newRouter(svc), http.MethodPost, "/reindex")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"error":"search engine is not available"}`, rr.Body.String())
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		rr := serve(t, newRouter(mocks.NewMockService(ctrl)), http.MethodGet, "/reindex")
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestContentTypes(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().IndexName("article").Return("site-article")

		rr := serve(t, newRouter(svc), http.MethodGet, "/types")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"content_types":[
			{"name":"article","searchable":true,"index":"site-article","fields":[
				{"name":"title","type":"text"},{"name":"publishedAt","type":"datetime"}]},
			{"name":"news","searchable":false,"fields":[{"name":"body","type":"html"}]}
		]}`, rr.Body.String())
	})

	t.Run("single searchable type includes mapping", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().IndexName("article").Return("site-article")

		rr := serve(t, newRouter(svc), http.MethodGet, "/types/article")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp v1.ContentTypeResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "site-article", resp.Index)
		assert.Equal(t, map[string]any{
			"_source": map[string]any{"enabled": true},
			"properties": map[string]any{
				"title":       map[string]any{"type": "text", "analyzer": "english"},
				"publishedAt": map[string]any{"type": mapping.DateType, "format": mapping.DateFormat},
			},
		}, resp.Mapping)
	})

	t.Run("non searchable type has no mapping", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		rr := serve(t, newRouter(mocks.NewMockService(ctrl)), http.MethodGet, "/types/news")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"name":"news","searchable":false,"fields":[{"name":"body","type":"html"}]}`, rr.Body.String())
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		rr := serve(t, newRouter(mocks.NewMockService(ctrl)), http.MethodGet, "/types/event")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"content type not found: event"}`, rr.Body.String())
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		rr := serve(t, newRouter(mocks.NewMockService(ctrl)), http.MethodGet, "/types/_hidden")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
