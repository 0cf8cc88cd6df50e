package itinerary

import (
	"math"

	"github.com/welcometomycity/citycore/internal/geo"
	"github.com/welcometomycity/citycore/internal/models"
)

func placeDistance(a, b models.Place) float64 {
	return geo.Distance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Sequence orders places greedily: start at the first place and keep moving
// to the closest unvisited one. Ties go to the earlier candidate.
// The input slice is left untouched.
func Sequence(places []models.Place) []models.Place {
	if len(places) <= 1 {
		return append([]models.Place{}, places...)
	}

	ordered := make([]models.Place, 0, len(places))
	ordered = append(ordered, places[0])

	remaining := append([]models.Place(nil), places[1:]...)
	for len(remaining) > 0 {
		last := ordered[len(ordered)-1]

		nearestIdx := 0
		nearestDist := math.Inf(1)
		for i, p := range remaining {
			if d := placeDistance(last, p); d < nearestDist {
				nearestDist = d
				nearestIdx = i
			}
		}

		ordered = append(ordered, remaining[nearestIdx])
		remaining = append(remaining[:nearestIdx], remaining[nearestIdx+1:]...)
	}

	return ordered
}

// TotalDistance sums consecutive haversine legs, rounded to 0.1 km
func TotalDistance(places []models.Place) float64 {
	total := 0.0
	for i := 0; i+1 < len(places); i++ {
		total += placeDistance(places[i], places[i+1])
	}
	return geo.RoundTenth(total)
}
