package busmatch

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/welcometomycity/citycore/internal/models"
)

// DefaultSearchLimit caps stop autocomplete results
const DefaultSearchLimit = 10

// Matcher searches a fixed set of bus routes
type Matcher struct {
	routes []models.BusRoute
}

// NewMatcher creates a matcher over routes. The slice is not copied.
func NewMatcher(routes []models.BusRoute) *Matcher {
	return &Matcher{routes: routes}
}

// FindRoutes returns every route serving from before to, fastest first.
// Only the forward direction of each route is considered.
func (m *Matcher) FindRoutes(from, to string) []models.BusMatch {
	matches := []models.BusMatch{}

	for _, route := range m.routes {
		fromIdx := FindStopIndex(route.Stops, from)
		toIdx := FindStopIndex(route.Stops, to)

		if fromIdx == -1 || toIdx == -1 || fromIdx >= toIdx {
			continue
		}

		between := append([]string(nil), route.Stops[fromIdx:toIdx+1]...)
		ac := route.IsAC()

		matches = append(matches, models.BusMatch{
			Route:             route,
			FromIndex:         fromIdx,
			ToIndex:           toIdx,
			StopsInBetween:    between,
			EstimatedDuration: EstimateDuration(len(between), ac),
			EstimatedFare:     EstimateFare(len(between), ac),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].EstimatedDuration < matches[j].EstimatedDuration
	})

	return matches
}

// AllStops returns every distinct stop name, sorted
func (m *Matcher) AllStops() []string {
	seen := make(map[string]struct{})
	stops := []string{}

	for _, route := range m.routes {
		for _, stop := range route.Stops {
			if _, ok := seen[stop]; ok {
				continue
			}
			seen[stop] = struct{}{}
			stops = append(stops, stop)
		}
	}

	sort.Strings(stops)
	return stops
}

// SearchStops returns up to limit stops whose normalized name contains the
// normalized query. Queries shorter than two characters return nothing.
func (m *Matcher) SearchStops(query string, limit int) []string {
	results := []string{}
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		return results
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	q := Normalize(query)
	if q == "" {
		return results
	}

	for _, stop := range m.AllStops() {
		if strings.Contains(Normalize(stop), q) {
			results = append(results, stop)
			if len(results) == limit {
				break
			}
		}
	}

	return results
}

// Routes returns all routes, optionally filtered by bus type
func (m *Matcher) Routes(busType models.BusType) []models.BusRoute {
	if busType == "" {
		return m.routes
	}

	filtered := []models.BusRoute{}
	for _, r := range m.routes {
		if r.Type == busType {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Route looks up a route by bus number, ignoring case
func (m *Matcher) Route(busNumber string) (models.BusRoute, bool) {
	for _, r := range m.routes {
		if strings.EqualFold(r.BusNumber, busNumber) {
			return r, true
		}
	}
	return models.BusRoute{}, false
}
