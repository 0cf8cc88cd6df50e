package routing

import (
	"sort"

	"github.com/welcometomycity/citycore/internal/geo"
	"github.com/welcometomycity/citycore/internal/models"
)

// Planner builds multi-modal route options between stations
type Planner struct {
	estimators []Estimator
}

// NewPlanner creates a planner using all estimators
func NewPlanner() *Planner {
	return &Planner{estimators: GetAllEstimators()}
}

// NewPlannerWith creates a planner restricted to the given estimators
func NewPlannerWith(estimators ...Estimator) *Planner {
	return &Planner{estimators: estimators}
}

// FindRoutes returns every applicable option sorted by duration.
// Options with equal duration keep estimator order.
func (p *Planner) FindRoutes(from, to models.Station) []models.RouteOption {
	km := geo.Distance(from.Lat, from.Lng, to.Lat, to.Lng)

	routes := make([]models.RouteOption, 0, len(p.estimators))
	for _, e := range p.estimators {
		if option, ok := e.Estimate(from, to, km); ok {
			routes = append(routes, option)
		}
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].Duration < routes[j].Duration
	})

	return routes
}

// Fastest returns the first option with the lowest duration
func Fastest(routes []models.RouteOption) (models.RouteOption, bool) {
	if len(routes) == 0 {
		return models.RouteOption{}, false
	}
	best := routes[0]
	for _, r := range routes[1:] {
		if r.Duration < best.Duration {
			best = r
		}
	}
	return best, true
}

// Cheapest returns the first option with the lowest cost
func Cheapest(routes []models.RouteOption) (models.RouteOption, bool) {
	if len(routes) == 0 {
		return models.RouteOption{}, false
	}
	best := routes[0]
	for _, r := range routes[1:] {
		if r.Cost < best.Cost {
			best = r
		}
	}
	return best, true
}
