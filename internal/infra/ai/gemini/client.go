package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	domain "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
	"github.com/bryanwahyu/tenant-scan/internal/infra/lazy"
)

const (
	ProviderName = "gemini"
	DefaultModel = "gemini-1.5-flash-latest"
)

// Client talks to Gemini through the genai SDK. The SDK client is created on
// first use and shared afterwards.
type Client struct {
	APIKey string
	Model  string

	sdk *lazy.Value[*genai.Client]
}

// NewClient builds a Gemini adapter. opts are appended after the API key,
// tests use them to swap the endpoint.
func NewClient(apiKey, model string, opts ...option.ClientOption) *Client {
	c := &Client{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	c.sdk = lazy.New(func(ctx context.Context) (*genai.Client, error) {
		if c.APIKey == "" {
			return nil, domain.ErrMissingCredentials
		}
		all := append([]option.ClientOption{option.WithAPIKey(c.APIKey)}, opts...)
		return genai.NewClient(ctx, all...)
	}, func(cl *genai.Client) error {
		return cl.Close()
	})
	return c
}

func (c *Client) Name() string     { return ProviderName }
func (c *Client) Configured() bool { return c.APIKey != "" }

// State exposes the SDK client lifecycle for readiness reporting.
func (c *Client) State() lazy.State { return c.sdk.State() }

func (c *Client) Close() error { return c.sdk.Close() }

// Generate makes exactly one generateContent call. No retries.
func (c *Client) Generate(ctx context.Context, in domain.GenerateRequest) (string, error) {
	cl, err := c.sdk.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	m := cl.GenerativeModel(c.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	// Returns strictly JSON
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(in.Temperature),
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx, buildParts(in)...)
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp), nil
}

func buildParts(in domain.GenerateRequest) []genai.Part {
	parts := make([]genai.Part, 0, len(in.Images)+1)
	parts = append(parts, genai.Text(in.Prompt))
	for _, img := range in.Images {
		parts = append(parts, &genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}
	return parts
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func classify(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: %v", domain.ErrEmptyAnalysis, blocked)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Body
		if body == "" {
			body = gErr.Message
		}
		return &domain.UpstreamError{Provider: ProviderName, StatusCode: gErr.Code, Body: body}
	}
	return fmt.Errorf("gemini generate: %w", err)
}

func ptrFloat32(v float32) *float32 { return &v }
