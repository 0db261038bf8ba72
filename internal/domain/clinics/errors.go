package clinics

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("missing places API key")
	ErrInvalidCoordinates = errors.New("request body must include numeric lat and lng")
)

// UpstreamError is a non-success answer from the places provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("places request failed with status %d: %s", e.StatusCode, e.Body)
}
