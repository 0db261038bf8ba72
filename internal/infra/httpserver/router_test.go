package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appai "github.com/bryanwahyu/tenant-scan/internal/application/ai"
	appclinics "github.com/bryanwahyu/tenant-scan/internal/application/clinics"
	domai "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
	"github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/infra/lazy"
	"github.com/bryanwahyu/tenant-scan/internal/middleware"
)

type fakeAI struct {
	configured bool
	raw        string
	err        error
	calls      int
}

func (f *fakeAI) Name() string     { return "fake" }
func (f *fakeAI) Configured() bool { return f.configured }
func (f *fakeAI) Generate(context.Context, domai.GenerateRequest) (string, error) {
	f.calls++
	return f.raw, f.err
}

type fakeFinder struct {
	configured bool
	cands      []clinics.Candidate
	err        error
	calls      int
}

func (f *fakeFinder) Configured() bool { return f.configured }
func (f *fakeFinder) Nearby(context.Context, clinics.Query) ([]clinics.Candidate, error) {
	f.calls++
	return f.cands, f.err
}

func newTestRouter(ai *fakeAI, finder *fakeFinder, opts Options) http.Handler {
	return NewRouter(appai.NewService(ai, nil), appclinics.NewService(finder, nil), opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

var img = base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

func TestWelcome(t *testing.T) {
	w, body := do(t, newTestRouter(&fakeAI{}, &fakeFinder{}, Options{}), http.MethodGet, "/api", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"message": "Welcome to the API"}, body)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAnalyze_StatusMapping(t *testing.T) {
	valid := `{"images":[{"data":"` + img + `","mimeType":"image/jpeg"}],"details":"leak","location":"Toronto"}`

	tests := []struct {
		name    string
		ai      *fakeAI
		body    string
		code    int
		errMsg  string
		details string
		calls   int
	}{
		{name: "missing key before body", ai: &fakeAI{}, body: `not json`, code: 500, errMsg: "Missing AI provider API key on server"},
		{name: "malformed body", ai: &fakeAI{configured: true}, body: `{"images":`, code: 400, errMsg: "Invalid request body"},
		{name: "wrong types", ai: &fakeAI{configured: true}, body: `{"images":"x"}`, code: 400, errMsg: "Invalid request body"},
		{name: "no images", ai: &fakeAI{configured: true}, body: `{"details":"d","location":"l"}`, code: 400, errMsg: "No images were provided for analysis"},
		{name: "empty images", ai: &fakeAI{configured: true}, body: `{"images":[]}`, code: 400, errMsg: "No images were provided for analysis"},
		{name: "no valid images", ai: &fakeAI{configured: true}, body: `{"images":[{"data":""},null,{"mimeType":"image/png"}]}`, code: 400, errMsg: "No valid images were provided"},
		{
			name: "upstream failure", body: valid, code: 502, errMsg: "AI provider request failed", details: `{"error":"quota"}`, calls: 1,
			ai: &fakeAI{configured: true, err: &domai.UpstreamError{Provider: "fake", StatusCode: 429, Body: `{"error":"quota"}`}},
		},
		{name: "empty output", ai: &fakeAI{configured: true, raw: ""}, body: valid, code: 500, errMsg: "AI provider did not return any analysis", calls: 1},
		{name: "unexpected", ai: &fakeAI{configured: true, err: errors.New("boom")}, body: valid, code: 500, errMsg: "Failed to analyze the image(s)", calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newTestRouter(tt.ai, &fakeFinder{}, Options{}), http.MethodPost, "/api/analyze", tt.body)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.errMsg, body["error"])
			if tt.details != "" {
				assert.Equal(t, tt.details, body["details"])
			}
			assert.Equal(t, tt.calls, tt.ai.calls)
		})
	}
}

func TestAnalyze_Success(t *testing.T) {
	ai := &fakeAI{configured: true, raw: `{"summary":"Water damage","rightsSummary":"Repairs are owed","laws":"RTA s.20","steps":["Write to landlord"],"clinics":[{"title":"Clinic","url":"https://c.example"}]}`}
	w, body := do(t, newTestRouter(ai, &fakeFinder{}, Options{}), http.MethodPost, "/api/analyze",
		`{"images":[{"data":"`+img+`"}],"details":"","location":""}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Water damage", body["summary"])

	rep := body["report"].(map[string]any)
	assert.Equal(t, "Water damage", rep["summary"])
	assert.Equal(t, "Repairs are owed", rep["rightsSummary"])
	assert.Equal(t, []any{"RTA s.20"}, rep["applicableLaws"])
	assert.Equal(t, []any{"Write to landlord"}, rep["actions"])
	assert.Equal(t, "", rep["landlordMessage"])
	assert.Equal(t, []any{}, rep["evidenceChecklist"])
	assert.Equal(t, []any{map[string]any{"name": "Clinic", "link": "https://c.example"}}, rep["clinicLinks"])
	assert.Equal(t, ai.raw, rep["raw"])
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	ai := &fakeAI{configured: true}
	big := `{"images":[{"data":"` + strings.Repeat("A", 2048) + `"}]}`
	w, body := do(t, newTestRouter(ai, &fakeFinder{}, Options{MaxBodyBytes: 1024}), http.MethodPost, "/api/analyze", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", body["error"])
	assert.Zero(t, ai.calls)
}

func TestClinics_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		finder *fakeFinder
		body   string
		code   int
		errMsg  string
		details string
		calls   int
	}{
		{name: "missing key", finder: &fakeFinder{}, body: `{"lat":1,"lng":2}`, code: 500, errMsg: "Missing places API key on server"},
		{name: "string coordinates", finder: &fakeFinder{configured: true}, body: `{"lat":"43.6","lng":"-79.3"}`, code: 400, errMsg: "Request body must include numeric lat and lng"},
		{name: "missing lng", finder: &fakeFinder{configured: true}, body: `{"lat":43.6}`, code: 400, errMsg: "Request body must include numeric lat and lng"},
		{name: "malformed", finder: &fakeFinder{configured: true}, body: `{`, code: 400, errMsg: "Request body must include numeric lat and lng"},
		{name: "upstream", finder: &fakeFinder{configured: true, err: &clinics.UpstreamError{StatusCode: 403, Body: "denied"}}, body: `{"lat":1,"lng":2}`, code: 502, errMsg: "Places API error", details: "denied", calls: 1},
		{name: "transport failure", finder: &fakeFinder{configured: true, err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}, body: `{"lat":1,"lng":2}`, code: 500, errMsg: "Internal server error", details: "search nearby: dial tcp 127.0.0.1:1: connect: connection refused", calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newTestRouter(&fakeAI{}, tt.finder, Options{}), http.MethodPost, "/clinics", tt.body)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tt.errMsg, body["error"])
			if tt.details != "" {
				assert.Equal(t, tt.details, body["details"])
			}
			assert.Equal(t, tt.calls, tt.finder.calls)
		})
	}
}

func TestClinics_Success(t *testing.T) {
	lat, lng, rating := 43.66, -79.39, 4.1
	finder := &fakeFinder{configured: true, cands: []clinics.Candidate{
		{DisplayName: "Legal Aid", FormattedAddress: "1 Bay St", Latitude: &lat, Longitude: &lng, Rating: &rating},
		{DisplayName: "No coords"},
	}}
	w, body := do(t, newTestRouter(&fakeAI{}, finder, Options{}), http.MethodPost, "/clinics", `{"lat":43.65,"lng":-79.38}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	list := body["clinics"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, map[string]any{
		"displayName":      "Legal Aid",
		"formattedAddress": "1 Bay St",
		"location":         map[string]any{"latitude": 43.66, "longitude": -79.39},
		"rating":           4.1,
	}, list[0])
}

func TestClinics_EmptyListIsArray(t *testing.T) {
	w, _ := do(t, newTestRouter(&fakeAI{}, &fakeFinder{configured: true}, Options{}), http.MethodPost, "/clinics", `{"lat":0,"lng":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"clinics":[]}`, w.Body.String())
}

func TestReady(t *testing.T) {
	w, body := do(t, newTestRouter(&fakeAI{}, &fakeFinder{configured: true}, Options{}), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])

	w, body = do(t, newTestRouter(&fakeAI{configured: true}, &fakeFinder{}, Options{}), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "degraded", checks["places"].(map[string]any)["status"])
}

func TestReady_ReportsFailedSDKClient(t *testing.T) {
	opts := Options{SDKStates: map[string]StateFunc{
		"gemini": func() lazy.State { return lazy.Ready },
		"places": func() lazy.State { return lazy.Failed },
	}}
	w, body := do(t, newTestRouter(&fakeAI{configured: true}, &fakeFinder{configured: true}, opts), http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusOK, w.Code)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["gemini_client"].(map[string]any)["status"])
	assert.Equal(t, "degraded", checks["places_client"].(map[string]any)["status"])
	assert.Equal(t, "places client failed", checks["places_client"].(map[string]any)["message"])
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(&fakeAI{}, &fakeFinder{}, Options{Metrics: middleware.NewMetrics(nil)})

	w, _ := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	do(t, h, http.MethodGet, "/api", "")
	w, _ = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/api",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&fakeAI{}, &fakeFinder{}, Options{})
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Contains(t, []int{http.StatusOK, http.StatusNoContent}, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
