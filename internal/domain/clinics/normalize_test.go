package clinics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNormalize_DropsPlacesWithoutCoordinates(t *testing.T) {
	cands := []Candidate{
		{DisplayName: "A", FormattedAddress: "1 Main", Latitude: f(43.1), Longitude: f(-79.1), Rating: f(4.5)},
		{DisplayName: "B", Latitude: f(43.2)},
		{DisplayName: "C"},
		{DisplayName: "D", Latitude: f(math.NaN()), Longitude: f(1)},
		{DisplayName: "E", Latitude: f(43.3), Longitude: f(-79.3)},
	}

	got := Normalize(cands, DefaultMaxResults)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].DisplayName)
	assert.Equal(t, Location{Latitude: 43.1, Longitude: -79.1}, got[0].Location)
	require.NotNil(t, got[0].Rating)
	assert.Equal(t, 4.5, *got[0].Rating)
	assert.Equal(t, "E", got[1].DisplayName)
	assert.Nil(t, got[1].Rating)
}

func TestNormalize_CapsAtLimit(t *testing.T) {
	var cands []Candidate
	for i := 0; i < 15; i++ {
		cands = append(cands, Candidate{DisplayName: "x", Latitude: f(1), Longitude: f(2)})
	}
	assert.Len(t, Normalize(cands, 10), 10)
}

func TestNormalize_EmptyIsArray(t *testing.T) {
	got := Normalize(nil, 10)
	require.NotNil(t, got)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestClinicJSONShape(t *testing.T) {
	b, err := json.Marshal(Clinic{DisplayName: "Legal Aid", FormattedAddress: "2 King St", Location: Location{Latitude: 1.5, Longitude: 2.5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"displayName":"Legal Aid","formattedAddress":"2 King St","location":{"latitude":1.5,"longitude":2.5},"rating":null}`, string(b))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(43.65, -79.38))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
	assert.False(t, ValidCoordinates(math.Inf(1), 0))
}

func TestNewQuery(t *testing.T) {
	q := NewQuery(1, 2)
	assert.Equal(t, 5000.0, q.RadiusMeters)
	assert.Equal(t, 10, q.MaxResults)
	assert.Equal(t, []string{"lawyer", "local_government_office"}, q.IncludedTypes)
}
