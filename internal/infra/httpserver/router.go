package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/tenant-scan/internal/application/ai"
	appclinics "github.com/bryanwahyu/tenant-scan/internal/application/clinics"
	domai "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
	"github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
	"github.com/bryanwahyu/tenant-scan/internal/infra/lazy"
	"github.com/bryanwahyu/tenant-scan/internal/logger"
	"github.com/bryanwahyu/tenant-scan/internal/middleware"
)

const defaultMaxBody = 15 << 20

var errInvalidBody = errors.New("invalid request body")

// StateFunc reports the lifecycle of a lazily created SDK client.
type StateFunc func() lazy.State

type Options struct {
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	AllowedOrigins []string
	MaxBodyBytes   int64
	AITimeout      time.Duration
	PlacesTimeout  time.Duration
	// SDKStates are reported on /ready as "<name>_client"; a failed
	// initialisation shows as degraded.
	SDKStates map[string]StateFunc
}

type Router struct {
	aiSvc      *appai.Service
	clinicsSvc *appclinics.Service
	opts       Options
}

func NewRouter(aiSvc *appai.Service, clinicsSvc *appclinics.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{aiSvc: aiSvc, clinicsSvc: clinicsSvc, opts: opts}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID(opts.Logger))
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	optional := map[string]middleware.HealthChecker{
		"places": middleware.Configured("places API key", func() bool { return clinicsSvc.CheckConfigured() == nil }),
	}
	for name, state := range opts.SDKStates {
		optional[name+"_client"] = sdkCheck(name, state)
	}
	mux.Get("/ready", middleware.HealthHandler(
		map[string]middleware.HealthChecker{
			"ai": middleware.Configured("AI provider API key", func() bool { return aiSvc.CheckConfigured() == nil }),
		},
		optional,
	))
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Get("/api", r.wrap(r.handleWelcome, analyzeError))
	mux.Post("/api/analyze", r.wrap(r.handleAnalyze, analyzeError))
	mux.Post("/clinics", r.wrap(r.handleClinics, clinicsError))

	return mux
}

func sdkCheck(name string, state StateFunc) middleware.HealthChecker {
	return middleware.CheckFunc(func(context.Context) error {
		if s := state(); s == lazy.Failed {
			return fmt.Errorf("%s client %s", name, s)
		}
		return nil
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errorMapper turns a handler error into a status and JSON body.
type errorMapper func(error) (int, map[string]any)

func (r *Router) wrap(h handlerFunc, mapErr errorMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, body := mapErr(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(req.Context(), r.opts.Logger).Error("request failed", zap.Int("status", status), zap.Error(err))
		}
		_ = writeJSON(w, status, body)
	}
}

func analyzeError(err error) (int, map[string]any) {
	var upErr *domai.UpstreamError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domai.ErrMissingCredentials):
		return http.StatusInternalServerError, map[string]any{"error": "Missing AI provider API key on server"}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, map[string]any{"error": "Request body too large"}
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, map[string]any{"error": "Invalid request body", "details": err.Error()}
	case errors.Is(err, domai.ErrNoImages):
		return http.StatusBadRequest, map[string]any{"error": "No images were provided for analysis"}
	case errors.Is(err, domai.ErrNoValidImages):
		return http.StatusBadRequest, map[string]any{"error": "No valid images were provided"}
	case errors.As(err, &upErr):
		return http.StatusBadGateway, map[string]any{"error": "AI provider request failed", "details": upErr.Body}
	case errors.Is(err, domai.ErrEmptyAnalysis):
		return http.StatusInternalServerError, map[string]any{"error": "AI provider did not return any analysis"}
	}
	return http.StatusInternalServerError, map[string]any{"error": "Failed to analyze the image(s)", "details": err.Error()}
}

func clinicsError(err error) (int, map[string]any) {
	var upErr *clinics.UpstreamError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, clinics.ErrMissingCredentials):
		return http.StatusInternalServerError, map[string]any{"ok": false, "error": "Missing places API key on server"}
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, map[string]any{"ok": false, "error": "Request body too large"}
	case errors.Is(err, clinics.ErrInvalidCoordinates):
		return http.StatusBadRequest, map[string]any{"ok": false, "error": "Request body must include numeric lat and lng"}
	case errors.As(err, &upErr):
		return http.StatusBadGateway, map[string]any{"ok": false, "error": "Places API error", "details": upErr.Body}
	}
	return http.StatusInternalServerError, map[string]any{"ok": false, "error": "Internal server error", "details": err.Error()}
}

// GET /api
func (r *Router) handleWelcome(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the API"})
}

// POST /api/analyze
// Body: {"images":[{"data":"<base64>","mimeType":"image/png"}],"details":"...","location":"..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	// credentials first, before the body is read
	if err := r.aiSvc.CheckConfigured(); err != nil {
		return err
	}

	body, err := r.readBody(w, req)
	if err != nil {
		return err
	}
	if err := middleware.ValidateJSON(analyzeSchema, body); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	var sub report.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	ctx, cancel := withTimeout(req.Context(), r.opts.AITimeout)
	defer cancel()

	res, err := r.aiSvc.Analyze(ctx, sub)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /clinics
// Body: {"lat": 43.65, "lng": -79.38}
func (r *Router) handleClinics(w http.ResponseWriter, req *http.Request) error {
	if err := r.clinicsSvc.CheckConfigured(); err != nil {
		return err
	}

	body, err := r.readBody(w, req)
	if err != nil {
		return err
	}
	if err := middleware.ValidateJSON(clinicsSchema, body); err != nil {
		return fmt.Errorf("%w: %v", clinics.ErrInvalidCoordinates, err)
	}
	var in struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return fmt.Errorf("%w: %v", clinics.ErrInvalidCoordinates, err)
	}

	ctx, cancel := withTimeout(req.Context(), r.opts.PlacesTimeout)
	defer cancel()

	list, err := r.clinicsSvc.Nearby(ctx, in.Lat, in.Lng)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"ok": true, "clinics": list})
}

func (r *Router) readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, req.Body, r.opts.MaxBodyBytes))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
