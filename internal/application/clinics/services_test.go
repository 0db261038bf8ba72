package clinics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
)

type fakeFinder struct {
	configured bool
	cands      []domain.Candidate
	err        error
	calls      int
	last       domain.Query
}

func (f *fakeFinder) Configured() bool { return f.configured }
func (f *fakeFinder) Nearby(_ context.Context, q domain.Query) ([]domain.Candidate, error) {
	f.calls++
	f.last = q
	return f.cands, f.err
}

func ptr(v float64) *float64 { return &v }

func TestNearby_MissingCredentials(t *testing.T) {
	f := &fakeFinder{}
	_, err := NewService(f, nil).Nearby(context.Background(), 1, 2)

	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	assert.Zero(t, f.calls)
}

func TestNearby_InvalidCoordinatesMakeNoCall(t *testing.T) {
	f := &fakeFinder{configured: true}
	_, err := NewService(f, nil).Nearby(context.Background(), 120, 2)

	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
	assert.Zero(t, f.calls)
}

func TestNearby_QueryAndNormalization(t *testing.T) {
	f := &fakeFinder{configured: true, cands: []domain.Candidate{
		{DisplayName: "Tenant Legal Clinic", FormattedAddress: "10 Queen St", Latitude: ptr(43.65), Longitude: ptr(-79.38), Rating: ptr(4.2)},
		{DisplayName: "No location"},
	}}

	got, err := NewService(f, nil).Nearby(context.Background(), 43.651070, -79.347015)
	require.NoError(t, err)

	assert.Equal(t, 43.651070, f.last.Latitude)
	assert.Equal(t, -79.347015, f.last.Longitude)
	assert.Equal(t, 5000.0, f.last.RadiusMeters)
	assert.Equal(t, []string{"lawyer", "local_government_office"}, f.last.IncludedTypes)
	assert.Equal(t, 10, f.last.MaxResults)

	require.Len(t, got, 1)
	assert.Equal(t, "Tenant Legal Clinic", got[0].DisplayName)
}

func TestNearby_EmptyResultIsEmptySlice(t *testing.T) {
	got, err := NewService(&fakeFinder{configured: true}, nil).Nearby(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNearby_Errors(t *testing.T) {
	up := &domain.UpstreamError{StatusCode: 403, Body: "denied"}
	_, err := NewService(&fakeFinder{configured: true, err: up}, nil).Nearby(context.Background(), 1, 1)
	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 403, got.StatusCode)

	boom := errors.New("dial tcp: timeout")
	_, err = NewService(&fakeFinder{configured: true, err: boom}, nil).Nearby(context.Background(), 1, 1)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.As(err, &got))
}
