package locate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

type TierName string

const (
	TierDevice  TierName = "device"
	TierNetwork TierName = "network"
	TierManual  TierName = "manual"
)

const (
	StatusManual     = "Unable to detect your location. Please enter it manually."
	StatusInProgress = "Location detection already in progress"
)

// ErrUnavailable is returned by a tier that cannot produce a fix on this host.
var ErrUnavailable = errors.New("location source unavailable")

// Result is what every path through the resolver yields.
type Result struct {
	Location string
	Status   string
	Tier     TierName
}

// Tier is one location source. Detect returns an error to hand over to the
// next tier.
type Tier interface {
	Name() TierName
	Detect(ctx context.Context) (Result, error)
}

// Resolver tries its tiers in order and falls back to manual entry.
type Resolver struct {
	tiers    []Tier
	inFlight atomic.Bool
}

func NewResolver(tiers ...Tier) *Resolver {
	return &Resolver{tiers: tiers}
}

// Resolve never fails. A call made while another is running returns at once
// with StatusInProgress and an empty location.
func (r *Resolver) Resolve(ctx context.Context) Result {
	if !r.inFlight.CompareAndSwap(false, true) {
		return Result{Status: StatusInProgress}
	}
	defer r.inFlight.Store(false)

	for _, t := range r.tiers {
		if ctx.Err() != nil {
			break
		}
		res, err := t.Detect(ctx)
		if err == nil && res.Location != "" {
			res.Tier = t.Name()
			return res
		}
	}
	return Result{Status: StatusManual, Tier: TierManual}
}

// FormatCoordinates renders a fix as "lat, lng" with six decimals.
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lng)
}

// ParseCoordinates reads a "lat, lng" string back into numbers.
func ParseCoordinates(s string) (lat, lng float64, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("location %q is not \"lat, lng\"", s)
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(a), 64); err != nil {
		return 0, 0, fmt.Errorf("parse latitude: %w", err)
	}
	if lng, err = strconv.ParseFloat(strings.TrimSpace(b), 64); err != nil {
		return 0, 0, fmt.Errorf("parse longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("coordinates %v, %v out of range", lat, lng)
	}
	return lat, lng, nil
}
