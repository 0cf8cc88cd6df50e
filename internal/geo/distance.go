// Package geo holds great-circle distance helpers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance
const EarthRadiusKm = 6371.0

// Distance returns the haversine distance in kilometers between two points
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// ValidCoordinates reports whether lat/lng is a usable position.
// Null island (0,0) is rejected since it only shows up as a missing value.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	if lat < -90 || lat > 90 {
		return false
	}
	if lng < -180 || lng > 180 {
		return false
	}
	return !(lat == 0 && lng == 0)
}

// RoundTenth rounds v to one decimal place
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
