package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/tenant-scan/internal/application"
	domain "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
	"github.com/bryanwahyu/tenant-scan/internal/infra/ai/prompt"
	"github.com/bryanwahyu/tenant-scan/internal/logger"
)

const DefaultTemperature float32 = 0.25

// Analysis outcomes as recorded in metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeUnparsed           = "unparsed"
	OutcomeEmpty              = "empty"
	OutcomeInvalid            = "invalid"
	OutcomeMissingCredentials = "missing_credentials"
	OutcomeUpstreamError      = "upstream_error"
	OutcomeError              = "error"
)

// Service runs a tenant submission through the configured AI provider and
// normalizes whatever comes back into a report.
type Service struct {
	client domain.Client
	log    *zap.Logger

	Clock       application.Clock
	Metrics     application.Recorder
	Temperature float32
}

func NewService(client domain.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:      client,
		log:         log,
		Clock:       application.SystemClock{},
		Metrics:     application.NopRecorder{},
		Temperature: DefaultTemperature,
	}
}

// Provider is the name of the backing AI provider.
func (s *Service) Provider() string {
	if s.client == nil {
		return ""
	}
	return s.client.Name()
}

// CheckConfigured returns ErrMissingCredentials when no provider key is set.
func (s *Service) CheckConfigured() error {
	if s.client == nil || !s.client.Configured() {
		return domain.ErrMissingCredentials
	}
	return nil
}

// Analyze validates the submission, makes exactly one provider call and
// returns the normalized analysis.
func (s *Service) Analyze(ctx context.Context, sub report.Submission) (report.Analysis, error) {
	log := logger.FromContext(ctx, s.log)

	if err := s.CheckConfigured(); err != nil {
		s.Metrics.AnalysisOutcome(OutcomeMissingCredentials)
		return report.Analysis{}, err
	}
	if len(sub.Images) == 0 {
		s.Metrics.AnalysisOutcome(OutcomeInvalid)
		return report.Analysis{}, domain.ErrNoImages
	}
	images := InlineImages(sub.Images)
	if len(images) == 0 {
		s.Metrics.AnalysisOutcome(OutcomeInvalid)
		return report.Analysis{}, domain.ErrNoValidImages
	}

	req := domain.GenerateRequest{
		Prompt:      prompt.Build(sub.Location, sub.Details),
		Images:      images,
		Temperature: s.Temperature,
	}

	provider := s.client.Name()
	start := s.Clock.Now()
	raw, err := s.client.Generate(ctx, req)
	s.Metrics.UpstreamDuration(provider, s.Clock.Now().Sub(start))
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			s.Metrics.AnalysisOutcome(OutcomeUpstreamError)
			log.Error("ai provider request failed",
				zap.String("provider", upErr.Provider),
				zap.Int("status", upErr.StatusCode),
				zap.String("body", upErr.Body))
			return report.Analysis{}, err
		}
		if errors.Is(err, domain.ErrEmptyAnalysis) {
			s.Metrics.AnalysisOutcome(OutcomeEmpty)
			log.Warn("ai provider returned no usable candidate", zap.String("provider", provider), zap.Error(err))
			return report.Analysis{}, err
		}
		s.Metrics.AnalysisOutcome(OutcomeError)
		log.Error("ai analysis failed", zap.String("provider", provider), zap.Error(err))
		return report.Analysis{}, fmt.Errorf("generate with %s: %w", provider, err)
	}

	raw = strings.TrimSpace(raw)
	rep, perr := report.Normalize(raw)
	if rep.Summary == "" {
		s.Metrics.AnalysisOutcome(OutcomeEmpty)
		log.Warn("ai provider returned an empty analysis", zap.String("provider", provider))
		return report.Analysis{}, domain.ErrEmptyAnalysis
	}

	outcome := OutcomeSuccess
	if perr != nil {
		outcome = OutcomeUnparsed
		log.Warn("ai output is not valid JSON, falling back to raw text",
			zap.String("provider", provider), zap.Error(perr))
	}
	s.Metrics.AnalysisOutcome(outcome)
	log.Info("analysis completed",
		zap.String("provider", provider),
		zap.Int("images", len(images)),
		zap.Bool("structured", perr == nil))

	return report.Analysis{Summary: rep.Summary, Report: rep}, nil
}

// InlineImages decodes submitted images into provider parts. Images with an
// empty or undecodable payload are skipped; a missing MIME type defaults to
// image/jpeg.
func InlineImages(images []report.Image) []domain.InlineImage {
	out := make([]domain.InlineImage, 0, len(images))
	for _, img := range images {
		data, mime := img.Data, img.MimeType
		// tolerate a full data URL in the data field
		if strings.HasPrefix(data, "data:") {
			if i := strings.IndexByte(data, ','); i >= 0 {
				if mime == "" {
					mime = headerMIME(data[len("data:"):i])
				}
				data = data[i+1:]
			}
		}
		raw, ok := decodeBase64(data)
		if !ok {
			continue
		}
		if mime == "" {
			mime = report.DefaultMIMEType
		}
		out = append(out, domain.InlineImage{MIMEType: mime, Data: raw})
	}
	return out
}

func headerMIME(header string) string {
	mime, _, _ := strings.Cut(header, ";")
	return strings.TrimSpace(mime)
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

func decodeBase64(s string) ([]byte, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, false
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil && len(b) > 0 {
			return b, true
		}
	}
	return nil, false
}
