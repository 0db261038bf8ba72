package locate

import (
	"context"
	"time"
)

const DefaultDeviceTimeout = 10 * time.Second

// Position is a device fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Locator is a platform positioning source.
type Locator interface {
	CurrentPosition(ctx context.Context, highAccuracy bool) (Position, error)
}

// Device asks a Locator for a high-accuracy fix, bounded by Timeout.
type Device struct {
	Locator Locator
	Timeout time.Duration
}

func (d Device) Name() TierName { return TierDevice }

func (d Device) Detect(ctx context.Context) (Result, error) {
	if d.Locator == nil {
		return Result{}, ErrUnavailable
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDeviceTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := d.Locator.CurrentPosition(ctx, true)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Location: FormatCoordinates(pos.Latitude, pos.Longitude),
		Status:   "Location detected",
	}, nil
}

// StaticLocator returns a fixed position, e.g. one passed on the command line.
type StaticLocator struct {
	Position *Position
}

func (s StaticLocator) CurrentPosition(ctx context.Context, _ bool) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if s.Position == nil {
		return Position{}, ErrUnavailable
	}
	return *s.Position, nil
}
