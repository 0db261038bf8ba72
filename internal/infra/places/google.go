package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"

	domain "github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/infra/lazy"
)

const (
	FieldMask      = "places.displayName,places.formattedAddress,places.location,places.rating"
	rankByDistance = "DISTANCE"
)

// Finder runs Places API (New) nearby searches.
type Finder struct {
	apiKey string
	svc    *lazy.Value[*placesapi.Service]
}

func NewFinder(apiKey string, opts ...option.ClientOption) *Finder {
	f := &Finder{apiKey: strings.TrimSpace(apiKey)}
	f.svc = lazy.New(func(ctx context.Context) (*placesapi.Service, error) {
		if f.apiKey == "" {
			return nil, domain.ErrMissingCredentials
		}
		all := append([]option.ClientOption{option.WithAPIKey(f.apiKey)}, opts...)
		return placesapi.NewService(ctx, all...)
	}, nil)
	return f
}

func (f *Finder) Configured() bool { return f.apiKey != "" }

func (f *Finder) State() lazy.State { return f.svc.State() }

func (f *Finder) Nearby(ctx context.Context, q domain.Query) ([]domain.Candidate, error) {
	svc, err := f.svc.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("places client: %w", err)
	}

	req := &placesapi.GoogleMapsPlacesV1SearchNearbyRequest{
		IncludedTypes: q.IncludedTypes,
		LocationRestriction: &placesapi.GoogleMapsPlacesV1SearchNearbyRequestLocationRestriction{
			Circle: &placesapi.GoogleMapsPlacesV1Circle{
				Center: &placesapi.GoogleTypeLatLng{Latitude: q.Latitude, Longitude: q.Longitude},
				Radius: q.RadiusMeters,
			},
		},
		MaxResultCount: int64(q.MaxResults),
		RankPreference: rankByDistance,
	}

	call := svc.Places.SearchNearby(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", FieldMask)

	resp, err := call.Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			body := gErr.Body
			if body == "" {
				body = gErr.Message
			}
			return nil, &domain.UpstreamError{StatusCode: gErr.Code, Body: body}
		}
		return nil, err
	}
	return candidates(resp), nil
}

func candidates(resp *placesapi.GoogleMapsPlacesV1SearchNearbyResponse) []domain.Candidate {
	if resp == nil {
		return nil
	}
	out := make([]domain.Candidate, 0, len(resp.Places))
	for _, p := range resp.Places {
		if p == nil {
			continue
		}
		c := domain.Candidate{FormattedAddress: p.FormattedAddress}
		if p.DisplayName != nil {
			c.DisplayName = p.DisplayName.Text
		}
		if p.Location != nil {
			lat, lng := p.Location.Latitude, p.Location.Longitude
			c.Latitude, c.Longitude = &lat, &lng
		}
		// ratings start at 1, zero means the field was omitted
		if p.Rating > 0 {
			r := p.Rating
			c.Rating = &r
		}
		out = append(out, c)
	}
	return out
}
