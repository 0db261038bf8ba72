package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/tenant-scan/internal/logger"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	assert.Len(t, seen, 36)
}

func TestRequestID_KeepsIncomingAndScopesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestID(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context(), nil).Info("inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "existing-request-id-123", w.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "existing-request-id-123", logs.All()[0].ContextMap()["request_id"])
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/analyze", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/analyze", fields["path"])
	assert.EqualValues(t, http.StatusBadGateway, fields["status"])
	assert.EqualValues(t, len("upstream"), fields["bytes"])
}

func TestMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetrics(nil)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Get("/metrics", m.Handler().ServeHTTP)

	for _, p := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/items/{id}", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInFlight))

	m.AnalysisOutcome("success")
	m.UpstreamDuration("gemini", 1500*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analysesTotal.WithLabelValues("success")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `analyses_total{outcome="success"} 1`)
	assert.Contains(t, body, `upstream_request_duration_seconds_count{provider="gemini"} 1`)
}

func TestHealthHandler(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	bad := CheckFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name     string
		required map[string]HealthChecker
		optional map[string]HealthChecker
		code     int
		status   string
	}{
		{"all healthy", map[string]HealthChecker{"ai": ok}, map[string]HealthChecker{"places": ok}, 200, "healthy"},
		{"optional down", map[string]HealthChecker{"ai": ok}, map[string]HealthChecker{"places": bad}, 200, "healthy"},
		{"required down", map[string]HealthChecker{"ai": bad}, nil, 503, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HealthHandler(tt.required, tt.optional)(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.code, w.Code)
			var got HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.status, got.Status)
			assert.Len(t, got.Checks, len(tt.required)+len(tt.optional))
		})
	}
}

func TestConfiguredChecker(t *testing.T) {
	assert.NoError(t, Configured("ai key", func() bool { return true }).Check(context.Background()))
	assert.EqualError(t, Configured("ai key", func() bool { return false }).Check(context.Background()), "ai key is not configured")
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestValidateJSON(t *testing.T) {
	schema := MustSchema(`{"type":"object","required":["lat"],"properties":{"lat":{"type":"number"}}}`)

	assert.NoError(t, ValidateJSON(schema, []byte(`{"lat": 1.5}`)))
	assert.ErrorIs(t, ValidateJSON(schema, []byte(`{"lat":`)), ErrMalformedJSON)
	assert.ErrorIs(t, ValidateJSON(schema, nil), ErrMalformedJSON)

	err := ValidateJSON(schema, []byte(`{"lat":"1.5"}`))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Problems, 1)
	assert.True(t, strings.Contains(se.Problems[0], "lat"))
}

func TestMustSchemaPanicsOnBadSchema(t *testing.T) {
	assert.Panics(t, func() { MustSchema(`{"type": 12}`) })
}
