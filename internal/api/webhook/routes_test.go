package webhook_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/content-search-sync/internal/api/webhook"
	"github.com/stacklok/content-search-sync/internal/api/webhook/mocks"
	"github.com/stacklok/content-search-sync/internal/content"
	"github.com/stacklok/content-search-sync/internal/sync"
)

func testRegistry() content.TypeRegistry {
	return content.NewStaticRegistry(content.Category{
		Name:       "article",
		Searchable: true,
		Fields: []content.Field{
			{Name: "title", Type: content.FieldText},
			{Name: "publishedAt", Type: content.FieldDatetime},
		},
	})
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const savePayload = `{
	"contentType": "article",
	"record": {"id": 42, "status": "published", "fields": {"title": "Hello", "publishedAt": "2024-03-01 10:30:00"}}
}`

func TestHandleEvent(t *testing.T) {
	t.Parallel()

	wantRecord := content.Record{
		ID:       "42",
		Category: "article",
		Status:   content.StatusPublished,
		Fields: map[string]any{
			"title":       "Hello",
			"publishedAt": time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	tests := []struct {
		name       string
		path       string
		body       string
		setupMock  func(*mocks.MockHandler)
		wantStatus int
		wantBody   string
	}{
		{
			name: "save creates",
			path: "/save",
			body: savePayload,
			setupMock: func(m *mocks.MockHandler) {
				m.EXPECT().Save(gomock.Any(), wantRecord).Return(sync.OutcomeCreated, nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"outcome":"created","content_type":"article","id":"42"}`,
		},
		{
			name: "save failure is reported in the body",
			path: "/save",
			body: savePayload,
			setupMock: func(m *mocks.MockHandler) {
				m.EXPECT().Save(gomock.Any(), wantRecord).Return(sync.OutcomeFailed, errors.New("engine rejected document"))
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"outcome":"failed","content_type":"article","id":"42","error":"engine rejected document"}`,
		},
		{
			name: "delete of missing document",
			path: "/delete",
			body: `{"contentType":"article","record":{"id":"a-7"}}`,
			setupMock: func(m *mocks.MockHandler) {
				m.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, rec content.Record) (sync.Outcome, error) {
						assert.Equal(t, "a-7", rec.ID)
						return sync.OutcomeNotFound, nil
					})
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `{"outcome":"not_found","content_type":"article","id":"a-7"}`,
		},
		{
			name:       "unknown operation",
			path:       "/publish",
			body:       savePayload,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"unknown event: publish"}`,
		},
		{
			name:       "missing record",
			path:       "/save",
			body:       `{"contentType":"article"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			path:       "/delete",
			body:       `contentType=article`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "payload too large",
			path:       "/save",
			body:       `{"contentType":"article","record":{"id":1,"fields":{"body":"` + strings.Repeat("x", webhook.MaxBodyBytes) + `"}}}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   `{"error":"payload too large"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			handler := mocks.NewMockHandler(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(handler)
			}

			rr := post(t, webhook.Router(handler, testRegistry()), tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}
