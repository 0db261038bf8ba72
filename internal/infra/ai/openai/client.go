package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/tenant-scan/internal/domain/ai"
)

const (
	ProviderName = "openai"
	DefaultModel = "gpt-4o-mini"
	maxTokens    = 2048
)

type Client struct {
	*openai.Client
	Model  string
	apiKey string
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithConfig(apiKey, openai.DefaultConfig(apiKey), model)
}

// NewClientWithConfig lets callers point the client at another base URL.
// cfg must carry the same apiKey.
func NewClientWithConfig(apiKey string, cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, apiKey: apiKey}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) Configured() bool { return strings.TrimSpace(c.apiKey) != "" }

// Generate sends the prompt and images as one user message and returns the
// text of the first choice.
func (c *Client) Generate(ctx context.Context, in domain.GenerateRequest) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(in.Images)+1)
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: in.Prompt})
	for _, img := range in.Images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens and leave temperature at default
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
		req.Temperature = in.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: content filtered", domain.ErrEmptyAnalysis)
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// upstreamError maps go-openai HTTP failures onto the provider-neutral error.
// Anything else (marshalling, context) is returned wrapped.
func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body, mErr := json.Marshal(map[string]any{"error": apiErr})
		if mErr != nil {
			body = []byte(apiErr.Message)
		}
		return &domain.UpstreamError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Body: string(body)}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &domain.UpstreamError{Provider: ProviderName, StatusCode: reqErr.HTTPStatusCode, Body: msg}
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}
