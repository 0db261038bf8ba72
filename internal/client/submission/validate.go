package submission

import (
	"errors"
	"strings"

	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
)

const (
	MsgNoPhotos         = "Please upload at least one photo"
	MsgNoDetails        = "Please describe the issue"
	MsgNoLocation       = "Please enter a location or detect it"
	MsgUnreadableImages = "We could not read your images. Please re-upload and try again."
)

// ErrUnreadableImages means photos were selected but none could be encoded.
var ErrUnreadableImages = errors.New("none of the selected images could be read")

// ValidationError lists every reason a submission may not be sent.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Validate reports whether a submission is eligible to be sent: at least one
// image plus non-blank details and location.
func Validate(sub report.Submission) error {
	var problems []string
	if len(sub.Images) == 0 {
		problems = append(problems, MsgNoPhotos)
	}
	if strings.TrimSpace(sub.Details) == "" {
		problems = append(problems, MsgNoDetails)
	}
	if strings.TrimSpace(sub.Location) == "" {
		problems = append(problems, MsgNoLocation)
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Build turns selected data URLs plus form text into a validated submission.
func Build(dataURLs []string, details, location string) (report.Submission, error) {
	sub := report.Submission{Details: details, Location: location}
	if len(dataURLs) > 0 {
		sub.Images = FromDataURLs(dataURLs)
		if len(sub.Images) == 0 {
			return sub, ErrUnreadableImages
		}
	}
	return sub, Validate(sub)
}
