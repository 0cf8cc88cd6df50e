// Package itinerary builds day-by-day sightseeing plans from a city's places.
package itinerary

import (
	"errors"

	"github.com/welcometomycity/citycore/internal/models"
)

const (
	// MinDays and MaxDays bound the supported trip length
	MinDays = 1
	MaxDays = 3

	// MinutesPerPlace is the average time spent at each stop
	MinutesPerPlace = 90
)

// ErrInvalidDays is returned for trip lengths outside MinDays..MaxDays
var ErrInvalidDays = errors.New("days must be between 1 and 3")

// Slot picks the place at Rank within Category, in catalog order
type Slot struct {
	Category models.Category
	Rank     int
}

// DayPlan is the ordered list of slots for one day
type DayPlan []Slot

func slot(c models.Category, rank int) Slot {
	return Slot{Category: c, Rank: rank}
}

var (
	hist = models.CategoryHistorical
	cult = models.CategoryCultural
	rel  = models.CategoryReligious
	food = models.CategoryFoodMarkets
	nat  = models.CategoryNature
)

// plans maps trip length to its day plans
var plans = map[int][]DayPlan{
	// Iconic spots
	1: {
		{slot(hist, 0), slot(hist, 1), slot(food, 0), slot(cult, 0)},
	},
	2: {
		{slot(hist, 0), slot(cult, 0), slot(food, 0), slot(cult, 1)},
		{slot(rel, 0), slot(rel, 1), slot(nat, 0), slot(food, 1)},
	},
	3: {
		{slot(hist, 0), slot(hist, 1), slot(hist, 2), slot(food, 0)},
		{slot(cult, 0), slot(cult, 1), slot(rel, 0), slot(food, 1)},
		{slot(nat, 0), slot(nat, 1), slot(rel, 1), slot(cult, 2)},
	},
}

// Plans returns the day plans for a trip of the given length
func Plans(days int) ([]DayPlan, error) {
	p, ok := plans[days]
	if !ok {
		return nil, ErrInvalidDays
	}
	return p, nil
}

// GroupByCategory splits places into per-category lists keeping input order
func GroupByCategory(places []models.Place) map[models.Category][]models.Place {
	grouped := make(map[models.Category][]models.Place)
	for _, p := range places {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}

// Select resolves a day plan against grouped places.
// Slots past the end of a category are skipped, as are places already in seen.
// Selected place ids are added to seen.
func Select(plan DayPlan, grouped map[models.Category][]models.Place, seen map[string]struct{}) []models.Place {
	selected := []models.Place{}
	for _, s := range plan {
		candidates := grouped[s.Category]
		if s.Rank < 0 || s.Rank >= len(candidates) {
			continue
		}

		p := candidates[s.Rank]
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		selected = append(selected, p)
	}
	return selected
}

// Generate builds an itinerary of the given length from a city's places.
// Each day's selection is ordered by nearest neighbour. Days with nothing to
// visit are still returned, empty.
func Generate(places []models.Place, days int) ([]models.ItineraryDay, error) {
	dayPlans, err := Plans(days)
	if err != nil {
		return nil, err
	}

	grouped := GroupByCategory(places)
	seen := make(map[string]struct{})

	itinerary := make([]models.ItineraryDay, 0, len(dayPlans))
	for i, plan := range dayPlans {
		ordered := Sequence(Select(plan, grouped, seen))
		itinerary = append(itinerary, models.ItineraryDay{
			Day:           i + 1,
			Places:        ordered,
			TotalDistance: TotalDistance(ordered),
			TotalDuration: len(ordered) * MinutesPerPlace,
		})
	}

	return itinerary, nil
}
