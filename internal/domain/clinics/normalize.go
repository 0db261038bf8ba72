package clinics

import "math"

// Normalize converts raw candidates into clinics, dropping entries without
// usable coordinates and capping the result at limit. The result is never nil.
func Normalize(cands []Candidate, limit int) []Clinic {
	out := make([]Clinic, 0, len(cands))
	for _, c := range cands {
		if limit > 0 && len(out) >= limit {
			break
		}
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		if !finite(*c.Latitude) || !finite(*c.Longitude) {
			continue
		}
		out = append(out, Clinic{
			DisplayName:      c.DisplayName,
			FormattedAddress: c.FormattedAddress,
			Location:         Location{Latitude: *c.Latitude, Longitude: *c.Longitude},
			Rating:           c.Rating,
		})
	}
	return out
}

// ValidCoordinates reports whether lat/lng are finite and within WGS84 bounds.
func ValidCoordinates(lat, lng float64) bool {
	return finite(lat) && finite(lng) && lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
