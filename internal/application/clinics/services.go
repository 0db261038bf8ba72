package clinics

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/tenant-scan/internal/application"
	domain "github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/logger"
)

const upstreamName = "places"

// Service looks up legal-aid clinics around a coordinate.
type Service struct {
	finder domain.Finder
	log    *zap.Logger

	Clock   application.Clock
	Metrics application.Recorder
}

func NewService(finder domain.Finder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		finder:  finder,
		log:     log,
		Clock:   application.SystemClock{},
		Metrics: application.NopRecorder{},
	}
}

func (s *Service) CheckConfigured() error {
	if s.finder == nil || !s.finder.Configured() {
		return domain.ErrMissingCredentials
	}
	return nil
}

// Nearby runs one nearby search and returns at most DefaultMaxResults clinics.
func (s *Service) Nearby(ctx context.Context, lat, lng float64) ([]domain.Clinic, error) {
	if err := s.CheckConfigured(); err != nil {
		return nil, err
	}
	if !domain.ValidCoordinates(lat, lng) {
		return nil, domain.ErrInvalidCoordinates
	}

	log := logger.FromContext(ctx, s.log)
	q := domain.NewQuery(lat, lng)

	start := s.Clock.Now()
	cands, err := s.finder.Nearby(ctx, q)
	s.Metrics.UpstreamDuration(upstreamName, s.Clock.Now().Sub(start))
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			log.Error("places search failed", zap.Int("status", upErr.StatusCode), zap.String("body", upErr.Body))
			return nil, err
		}
		log.Error("places search failed", zap.Error(err))
		return nil, fmt.Errorf("search nearby: %w", err)
	}

	out := domain.Normalize(cands, q.MaxResults)
	log.Debug("places search completed", zap.Int("candidates", len(cands)), zap.Int("clinics", len(out)))
	return out, nil
}
