package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials means the provider API key is not configured.
	ErrMissingCredentials = errors.New("missing AI provider API key")
	// ErrNoImages means the submission carried no images at all.
	ErrNoImages = errors.New("no images were provided for analysis")
	// ErrNoValidImages means every submitted image lacked a usable payload.
	ErrNoValidImages = errors.New("no valid images were provided")
	// ErrEmptyAnalysis means the provider answered but nothing usable came back.
	ErrEmptyAnalysis = errors.New("AI provider did not return any analysis")
)

// UpstreamError carries a provider failure together with its raw error body.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}
