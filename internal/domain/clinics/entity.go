package clinics

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Clinic is one nearby legal-aid or government office.
// Rating is nil when the provider has no rating for the place.
type Clinic struct {
	DisplayName      string   `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Location         Location `json:"location"`
	Rating           *float64 `json:"rating"`
}

// Query describes a nearby search around a point.
type Query struct {
	Latitude      float64
	Longitude     float64
	RadiusMeters  float64
	IncludedTypes []string
	MaxResults    int
}

// Candidate is a raw place as returned by a finder, before normalization.
// Latitude and Longitude are nil when the provider omitted the location.
type Candidate struct {
	DisplayName      string
	FormattedAddress string
	Latitude         *float64
	Longitude        *float64
	Rating           *float64
}

const (
	DefaultRadiusMeters = 5000
	DefaultMaxResults   = 10
)

// DefaultTypes are the place types searched for tenant legal help.
var DefaultTypes = []string{"lawyer", "local_government_office"}

// NewQuery builds the standard search around lat/lng.
func NewQuery(lat, lng float64) Query {
	return Query{
		Latitude:      lat,
		Longitude:     lng,
		RadiusMeters:  DefaultRadiusMeters,
		IncludedTypes: append([]string(nil), DefaultTypes...),
		MaxResults:    DefaultMaxResults,
	}
}
