package clinics

import "context"

// Finder searches for places near a point.
type Finder interface {
	Configured() bool
	Nearby(ctx context.Context, q Query) ([]Candidate, error)
}
