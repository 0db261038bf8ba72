package ai

import "context"

// InlineImage is one decoded image part sent alongside the prompt.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest is a single-turn multimodal completion request.
type GenerateRequest struct {
	Prompt      string
	Images      []InlineImage
	Temperature float32
}

// Client is the generative-AI provider port. Generate returns the concatenated
// text of the first candidate, or an *UpstreamError when the provider refuses.
type Client interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
