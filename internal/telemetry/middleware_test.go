package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("nil metrics pass through", func(t *testing.T) {
		t.Parallel()

		mw, err := MetricsMiddleware(nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/events/save", nil))

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("labels requests with the route pattern", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

		mw, err := MetricsMiddleware(mp)
		require.NoError(t, err)

		r := chi.NewRouter()
		r.Use(mw)
		r.Get("/api/v1/types/{name}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/types/article", nil))

		found := collect(t, reader)
		total, ok := found["content_sync_http_requests_total"].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, total.DataPoints, 1)

		route, ok := total.DataPoints[0].Attributes.Value(attribute.Key("route"))
		require.True(t, ok)
		assert.Equal(t, "/api/v1/types/{name}", route.AsString())

		status, ok := total.DataPoints[0].Attributes.Value(attribute.Key("status_code"))
		require.True(t, ok)
		assert.Equal(t, "200", status.AsString())
	})
}

func TestRoutePattern_Unrouted(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unknownRoute, routePattern(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider passes through", func(t *testing.T) {
		t.Parallel()

		rr := httptest.NewRecorder()
		TracingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, "ok", rr.Body.String())
	})

	t.Run("span named after route with error status on 5xx", func(t *testing.T) {
		t.Parallel()

		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

		r := chi.NewRouter()
		r.Use(TracingMiddleware(tp))
		r.Post("/events/{operation}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		r.Get("/manage", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/events/save", nil))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/manage", nil))

		spans := exporter.GetSpans()
		require.Len(t, spans, 2)
		assert.Equal(t, "POST /events/{operation}", spans[0].Name)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "GET /manage", spans[1].Name)
		assert.Equal(t, codes.Ok, spans[1].Status.Code)
	})
}
