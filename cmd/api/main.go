package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/tenant-scan/internal/application/ai"
	appclinics "github.com/bryanwahyu/tenant-scan/internal/application/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/config"
	domai "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
	"github.com/bryanwahyu/tenant-scan/internal/infra/ai/gemini"
	"github.com/bryanwahyu/tenant-scan/internal/infra/ai/openai"
	"github.com/bryanwahyu/tenant-scan/internal/infra/httpserver"
	"github.com/bryanwahyu/tenant-scan/internal/infra/places"
	"github.com/bryanwahyu/tenant-scan/internal/logger"
	"github.com/bryanwahyu/tenant-scan/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// init AI provider
	var aiClient domai.Client
	sdkStates := map[string]httpserver.StateFunc{}
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		oc := goopenai.DefaultConfig(cfg.AIKey())
		if cfg.AI.OpenAI.BaseURL != "" {
			oc.BaseURL = cfg.AI.OpenAI.BaseURL
		}
		aiClient = openai.NewClientWithConfig(cfg.AIKey(), oc, cfg.AI.OpenAI.Model)
	default:
		gc := gemini.NewClient(cfg.AIKey(), cfg.AI.Gemini.Model)
		defer func() { _ = gc.Close() }()
		aiClient = gc
		sdkStates["gemini"] = gc.State
	}
	finder := places.NewFinder(cfg.Places.APIKey)
	sdkStates["places"] = finder.State

	metrics := middleware.NewMetrics(nil)

	// init services
	aiSvc := appai.NewService(aiClient, lg)
	aiSvc.Metrics = metrics
	aiSvc.Temperature = cfg.AI.Temperature

	clinicsSvc := appclinics.NewService(finder, lg)
	clinicsSvc.Metrics = metrics

	if err := aiSvc.CheckConfigured(); err != nil {
		lg.Warn("AI provider API key is not set, /api/analyze will fail", zap.String("provider", aiSvc.Provider()))
	}
	if !finder.Configured() {
		lg.Warn("GOOGLE_PLACES_API_KEY is not set, /clinics will fail")
	}

	// init router
	handler := httpserver.NewRouter(aiSvc, clinicsSvc, httpserver.Options{
		Logger:         lg,
		Metrics:        metrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		AITimeout:      cfg.AI.Timeout,
		PlacesTimeout:  cfg.Places.Timeout,
		SDKStates:      sdkStates,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", addr), zap.String("ai_provider", aiSvc.Provider()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		lg.Error("server stopped", zap.Error(err))
	}
	lg.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}
