package routing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welcometomycity/citycore/internal/geo"
	"github.com/welcometomycity/citycore/internal/models"
)

func TestPlannerFindRoutes(t *testing.T) {
	planner := NewPlanner()

	t.Run("Shared line journey", func(t *testing.T) {
		routes := planner.FindRoutes(parkStreet, esplanade)
		require.Len(t, routes, 4)

		ids := make([]string, len(routes))
		for i, r := range routes {
			ids[i] = r.ID
		}
		assert.Equal(t, []string{"metro", "taxi", "bus", "walk"}, ids)
		assert.Equal(t, 0, routes[0].Interchanges)
		assert.Equal(t, 5, routes[0].Duration)
	})

	t.Run("Interchange counted when no line is shared", func(t *testing.T) {
		routes := planner.FindRoutes(parkStreet, sealdah)
		require.NotEmpty(t, routes)

		var metro models.RouteOption
		for _, r := range routes {
			if r.Type == models.ModeMetro {
				metro = r
			}
		}
		assert.Equal(t, 1, metro.Interchanges)
	})

	t.Run("Same station", func(t *testing.T) {
		routes := planner.FindRoutes(parkStreet, parkStreet)
		require.Len(t, routes, 4)
		for _, r := range routes {
			assert.Equal(t, 0.0, r.Distance)
		}
	})

	t.Run("Restricted planner", func(t *testing.T) {
		routes := NewPlannerWith(&TaxiEstimator{}).FindRoutes(parkStreet, esplanade)
		require.Len(t, routes, 1)
		assert.Equal(t, models.ModeTaxi, routes[0].Type)
	})
}

func TestPlannerProperties(t *testing.T) {
	planner := NewPlanner()

	// Fan out from a fixed origin in 0.005 degree steps to cross the walk threshold
	for i := 0; i < 20; i++ {
		to := models.Station{
			ID:    fmt.Sprintf("s%d", i),
			Name:  fmt.Sprintf("Stop %d", i),
			Lat:   parkStreet.Lat + float64(i)*0.005,
			Lng:   parkStreet.Lng + float64(i)*0.002,
			Lines: []string{"green"},
		}
		if i%2 == 0 {
			to.Lines = []string{"blue"}
		}

		t.Run(to.ID, func(t *testing.T) {
			routes := planner.FindRoutes(parkStreet, to)
			km := geo.Distance(parkStreet.Lat, parkStreet.Lng, to.Lat, to.Lng)

			for j := 1; j < len(routes); j++ {
				assert.LessOrEqual(t, routes[j-1].Duration, routes[j].Duration)
			}

			hasWalk := false
			for _, r := range routes {
				if r.Type == models.ModeWalk {
					hasWalk = true
				}
				if r.Type == models.ModeMetro {
					if SharesLine(parkStreet, to) {
						assert.Equal(t, 0, r.Interchanges)
					} else {
						assert.Equal(t, 1, r.Interchanges)
					}
				}
			}
			assert.Equal(t, km < 3, hasWalk)
		})
	}
}

func TestFastestAndCheapest(t *testing.T) {
	routes := NewPlanner().FindRoutes(parkStreet, esplanade)

	fastest, ok := Fastest(routes)
	require.True(t, ok)
	assert.Equal(t, models.ModeMetro, fastest.Type)

	cheapest, ok := Cheapest(routes)
	require.True(t, ok)
	assert.Equal(t, models.ModeWalk, cheapest.Type)

	_, ok = Fastest(nil)
	assert.False(t, ok)
	_, ok = Cheapest(nil)
	assert.False(t, ok)
}
