package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/content-search-sync/internal/content"
	contentmocks "github.com/stacklok/content-search-sync/internal/content/mocks"
	"github.com/stacklok/content-search-sync/internal/mapping"
	"github.com/stacklok/content-search-sync/internal/search"
	searchmocks "github.com/stacklok/content-search-sync/internal/search/mocks"
)

var (
	articleType = content.Category{
		Name:       "article",
		Searchable: true,
		Fields: []content.Field{
			{Name: "title", Type: content.FieldText},
			{Name: "publishedAt", Type: content.FieldDatetime},
			{Name: "featured", Type: content.FieldBoolean},
			{Name: "meta", Type: content.FieldJSON},
		},
		Overrides: map[string]map[string]any{"title": {"type": "text", "analyzer": "english"}},
	}
	pageType = content.Category{
		Name:       "page",
		Searchable: true,
		Fields:     []content.Field{{Name: "title", Type: content.FieldText}},
	}
	newsType = content.Category{
		Name:   "news",
		Fields: []content.Field{{Name: "title", Type: content.FieldText}},
	}

	errBoom = errors.New("boom")
)

func testRegistry() content.TypeRegistry {
	return content.NewStaticRegistry(articleType, pageType, newsType)
}

func TestIndexName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "site-article", IndexName("site", "article"))

	s := New(nil, nil, testRegistry(), "blog")
	assert.Equal(t, "blog-page", s.IndexName("page"))
}

func TestSynchronizer_IsAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pingErr error
		want    bool
	}{
		{name: "engine answers", want: true},
		{name: "engine unreachable", pingErr: errBoom, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := searchmocks.NewMockClient(ctrl)
			client.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			s := New(client, nil, testRegistry(), "site")
			assert.Equal(t, tt.want, s.IsAvailable(context.Background()))
		})
	}
}

func TestSynchronizer_ReindexAll(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := searchmocks.NewMockClient(ctrl)
	source := contentmocks.NewMockSource(ctrl)
	settings := map[string]any{"number_of_shards": 1}

	published := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	filter := filterPublished()

	gomock.InOrder(
		client.EXPECT().IndexExists(gomock.Any(), "site-article").Return(true, nil),
		client.EXPECT().DeleteIndex(gomock.Any(), "site-article").Return(true, nil),
		client.EXPECT().CreateIndex(gomock.Any(), "site-article", settings).Return(true, nil),
		client.EXPECT().PutMapping(gomock.Any(), "site-article", mapping.Build(articleType)).Return(true, nil),
		source.EXPECT().GetRecords(gomock.Any(), "article", filter).Return([]content.Record{
			{ID: "1", Category: "article", Status: content.StatusPublished, Fields: map[string]any{
				"title": "First", "publishedAt": published, "featured": 1, "meta": map[string]any{"a": 1},
			}},
			{ID: "2", Category: "article", Status: content.StatusPublished, Fields: map[string]any{
				"title": "Second",
			}},
		}, nil),
		client.EXPECT().IndexDocument(gomock.Any(), "site-article", "1", map[string]any{
			"title": "First", "publishedAt": "2024-03-01T10:30:00Z", "featured": true, "meta": nil,
		}).Return(search.ResultCreated, nil),
		client.EXPECT().IndexDocument(gomock.Any(), "site-article", "2", map[string]any{
			"title": "Second", "publishedAt": nil, "featured": false, "meta": nil,
		}).Return(search.ResultCreated, nil),

		client.EXPECT().IndexExists(gomock.Any(), "site-page").Return(false, nil),
		client.EXPECT().CreateIndex(gomock.Any(), "site-page", settings).Return(false, errBoom),
		client.EXPECT().PutMapping(gomock.Any(), "site-page", mapping.Build(pageType)).Return(false, nil),
		source.EXPECT().GetRecords(gomock.Any(), "page", filter).Return([]content.Record{
			{ID: "9", Category: "page", Status: content.StatusPublished, Fields: map[string]any{"title": "About"}},
		}, nil),
		client.EXPECT().IndexDocument(gomock.Any(), "site-page", "9", map[string]any{"title": "About"}).
			Return(search.Result(""), errBoom),
	)

	s := New(client, source, testRegistry(), "site", WithIndexSettings(settings))
	assert.Nil(t, s.LastRun())

	lines := s.ReindexAll(context.Background())

	assert.Equal(t, []string{
		"Successfully deleted index site-article.",
		"Successfully created index site-article.",
		"Successfully added mapping for article.",
		"Imported 2 for article.",
		"Error while creating index site-page: boom.",
		"Error while adding mapping for page.",
		"Failed to import 1 of 1 for page.",
		"Imported 1 for page.",
	}, lines)
	assert.Equal(t, lines, s.DebugLog())

	run := s.LastRun()
	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.ContentTypes)
	assert.Equal(t, 3, run.Imported)
	assert.Equal(t, 1, run.Failed)
}

func filterPublished() content.Filter {
	return content.Filter{Status: content.StatusPublished}
}

func TestSynchronizer_ReindexAll_ContinuesAfterFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := searchmocks.NewMockClient(ctrl)
	source := contentmocks.NewMockSource(ctrl)

	client.EXPECT().IndexExists(gomock.Any(), "site-article").Return(true, nil)
	client.EXPECT().DeleteIndex(gomock.Any(), "site-article").Return(false, nil)
	client.EXPECT().CreateIndex(gomock.Any(), "site-article", gomock.Nil()).Return(false, nil)
	client.EXPECT().PutMapping(gomock.Any(), "site-article", gomock.Any()).Return(false, errBoom)
	source.EXPECT().GetRecords(gomock.Any(), "article", filterPublished()).Return(nil, errBoom)

	client.EXPECT().IndexExists(gomock.Any(), "site-page").Return(false, errBoom)
	client.EXPECT().CreateIndex(gomock.Any(), "site-page", gomock.Nil()).Return(true, nil)
	client.EXPECT().PutMapping(gomock.Any(), "site-page", gomock.Any()).Return(true, nil)
	source.EXPECT().GetRecords(gomock.Any(), "page", filterPublished()).Return(nil, nil)

	s := New(client, source, testRegistry(), "site")
	lines := s.ReindexAll(context.Background())

	assert.Equal(t, []string{
		"Error while deleting index site-article.",
		"Error while creating index site-article.",
		"Error while adding mapping for article: boom.",
		"Error while loading records for article: boom.",
		"Imported 0 for article.",
		"Error while checking index site-page: boom.",
		"Successfully created index site-page.",
		"Successfully added mapping for page.",
		"Imported 0 for page.",
	}, lines)
}

func TestSynchronizer_ReindexAll_ResetsDebugLog(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := searchmocks.NewMockClient(ctrl)
	source := contentmocks.NewMockSource(ctrl)

	client.EXPECT().IndexExists(gomock.Any(), "site-page").Return(false, nil).Times(2)
	client.EXPECT().CreateIndex(gomock.Any(), "site-page", gomock.Nil()).Return(true, nil).Times(2)
	client.EXPECT().PutMapping(gomock.Any(), "site-page", gomock.Any()).Return(true, nil).Times(2)
	source.EXPECT().GetRecords(gomock.Any(), "page", gomock.Any()).Return(nil, nil).Times(2)

	s := New(client, source, content.NewStaticRegistry(pageType), "site")
	first := s.ReindexAll(context.Background())
	second := s.ReindexAll(context.Background())

	assert.Equal(t, first, second)
	assert.Len(t, s.DebugLog(), 3)
}

func TestSynchronizer_OnSave(t *testing.T) {
	t.Parallel()

	record := content.Record{
		ID:       "1",
		Category: "article",
		Status:   content.StatusPublished,
		Fields:   map[string]any{"title": "Hello", "featured": "1", "meta": "{}"},
	}
	body := map[string]any{"title": "Hello", "publishedAt": nil, "featured": true, "meta": nil}

	tests := []struct {
		name    string
		record  content.Record
		setup   func(c *searchmocks.MockClient)
		want    Outcome
		wantErr bool
	}{
		{
			name:   "content type not searchable",
			record: content.Record{ID: "1", Category: "news"},
			setup:  func(*searchmocks.MockClient) {},
			want:   OutcomeSkipped,
		},
		{
			name:   "unknown content type",
			record: content.Record{ID: "1", Category: "event"},
			setup:  func(*searchmocks.MockClient) {},
			want:   OutcomeSkipped,
		},
		{
			name:   "existing document is updated",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").
					Return(&search.Document{Index: "site-article", ID: "1"}, nil)
				c.EXPECT().UpdateDocument(gomock.Any(), "site-article", "1", body).Return(search.ResultUpdated, nil)
			},
			want: OutcomeUpdated,
		},
		{
			name: "fields missing from a partial record are cleared",
			record: content.Record{
				ID:       "1",
				Category: "article",
				Status:   content.StatusPublished,
				Fields:   map[string]any{"title": "Hello"},
			},
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(&search.Document{}, nil)
				c.EXPECT().UpdateDocument(gomock.Any(), "site-article", "1",
					map[string]any{"title": "Hello", "publishedAt": nil, "featured": false, "meta": nil}).
					Return(search.ResultUpdated, nil)
			},
			want: OutcomeUpdated,
		},
		{
			name:   "unchanged document counts as updated",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(&search.Document{}, nil)
				c.EXPECT().UpdateDocument(gomock.Any(), "site-article", "1", body).Return(search.ResultNoop, nil)
			},
			want: OutcomeUpdated,
		},
		{
			name:   "missing document is created",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(nil, search.ErrNotFound)
				c.EXPECT().IndexDocument(gomock.Any(), "site-article", "1", body).Return(search.ResultCreated, nil)
			},
			want: OutcomeCreated,
		},
		{
			name:   "lookup failure falls back to index",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(nil, errBoom)
				c.EXPECT().IndexDocument(gomock.Any(), "site-article", "1", body).Return(search.ResultUpdated, nil)
			},
			want: OutcomeUpdated,
		},
		{
			name:   "index failure",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(nil, search.ErrNotFound)
				c.EXPECT().IndexDocument(gomock.Any(), "site-article", "1", body).Return(search.Result(""), errBoom)
			},
			want:    OutcomeFailed,
			wantErr: true,
		},
		{
			name:   "update failure",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-article", "1").Return(&search.Document{}, nil)
				c.EXPECT().UpdateDocument(gomock.Any(), "site-article", "1", body).Return(search.Result(""), errBoom)
			},
			want:    OutcomeFailed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := searchmocks.NewMockClient(ctrl)
			tt.setup(client)

			s := New(client, nil, testRegistry(), "site")
			outcome, err := s.OnSave(context.Background(), tt.record)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestSynchronizer_OnDelete(t *testing.T) {
	t.Parallel()

	record := content.Record{ID: "7", Category: "page"}

	tests := []struct {
		name       string
		record     content.Record
		setup      func(c *searchmocks.MockClient)
		want       Outcome
		wantErr    bool
		wantErrMsg string
	}{
		{
			name:   "content type not searchable",
			record: content.Record{ID: "7", Category: "news"},
			setup:  func(*searchmocks.MockClient) {},
			want:   OutcomeSkipped,
		},
		{
			name:   "document never indexed",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").
					Return(nil, &search.ResponseError{StatusCode: 404, Type: "index_not_found_exception"})
			},
			want: OutcomeNotFound,
		},
		{
			name:   "document deleted",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.ResultDeleted, nil)
			},
			want: OutcomeDeleted,
		},
		{
			name:   "document vanished between lookup and delete",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.Result(""), search.ErrNotFound)
			},
			want: OutcomeNotFound,
		},
		{
			name:   "lookup failure",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(nil, errBoom)
			},
			want:    OutcomeFailed,
			wantErr: true,
		},
		{
			name:   "delete failure",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.Result(""), errBoom)
			},
			want:    OutcomeFailed,
			wantErr: true,
		},
		{
			name:   "delete reports noop",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.ResultNoop, nil)
			},
			want:       OutcomeFailed,
			wantErrMsg: `unexpected delete result "noop"`,
		},
		{
			name:   "delete reports no result",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.Result(""), nil)
			},
			want:       OutcomeFailed,
			wantErrMsg: `unexpected delete result ""`,
		},
		{
			name:   "delete reports not found",
			record: record,
			setup: func(c *searchmocks.MockClient) {
				c.EXPECT().GetDocument(gomock.Any(), "site-page", "7").Return(&search.Document{}, nil)
				c.EXPECT().DeleteDocument(gomock.Any(), "site-page", "7").Return(search.ResultNotFound, nil)
			},
			want: OutcomeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			client := searchmocks.NewMockClient(ctrl)
			tt.setup(client)

			s := New(client, nil, testRegistry(), "site")
			outcome, err := s.OnDelete(context.Background(), tt.record)
			switch {
			case tt.wantErr:
				assert.ErrorIs(t, err, errBoom)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestSynchronizer_IndexesExist(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := searchmocks.NewMockClient(ctrl)
	client.EXPECT().IndexExists(gomock.Any(), "site-article").Return(false, errBoom)
	client.EXPECT().IndexExists(gomock.Any(), "site-page").Return(true, nil)

	s := New(client, nil, testRegistry(), "site")
	assert.True(t, s.IndexesExist(context.Background()))

	none := searchmocks.NewMockClient(ctrl)
	none.EXPECT().IndexExists(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	assert.False(t, New(none, nil, testRegistry(), "site").IndexesExist(context.Background()))
}

func TestSynchronizer_Mappings(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := searchmocks.NewMockClient(ctrl)
	articleSchema := mapping.Build(articleType)
	client.EXPECT().GetMapping(gomock.Any(), "site-article").Return(articleSchema, nil)
	client.EXPECT().GetMapping(gomock.Any(), "site-page").Return(mapping.Schema{}, search.ErrNotFound)

	s := New(client, nil, testRegistry(), "site")
	assert.Equal(t, map[string]mapping.Schema{"site-article": articleSchema}, s.Mappings(context.Background()))
}
