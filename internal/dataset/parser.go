// Package dataset loads the reference data (cities, metro stations, bus
// routes, curated places) from embedded fixtures or Postgres.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/welcometomycity/citycore/internal/geo"
	"github.com/welcometomycity/citycore/internal/models"
	"go.uber.org/zap"
)

type citiesFile struct {
	Cities []models.City `json:"cities"`
}

// ParseCities decodes a cities document and cleans it
func ParseCities(r io.Reader) ([]models.City, error) {
	var doc citiesFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return CleanCities(doc.Cities), nil
}

// ParseStations decodes a city-keyed station document and cleans each list
func ParseStations(r io.Reader) (map[string][]models.Station, error) {
	var doc map[string][]models.Station
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode stations: %w", err)
	}

	out := make(map[string][]models.Station, len(doc))
	for city, stations := range doc {
		out[strings.ToLower(city)] = CleanStations(city, stations)
	}
	return out, nil
}

// ParseBusRoutes decodes a city-keyed bus route document and cleans each list
func ParseBusRoutes(r io.Reader) (map[string][]models.BusRoute, error) {
	var doc map[string][]models.BusRoute
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode bus routes: %w", err)
	}

	out := make(map[string][]models.BusRoute, len(doc))
	for city, routes := range doc {
		out[strings.ToLower(city)] = CleanBusRoutes(city, routes)
	}
	return out, nil
}

// ParsePlaces decodes a city-keyed place document and cleans each list
func ParsePlaces(r io.Reader) (map[string][]models.Place, error) {
	var doc map[string][]models.Place
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode places: %w", err)
	}

	out := make(map[string][]models.Place, len(doc))
	for city, places := range doc {
		out[strings.ToLower(city)] = CleanPlaces(city, places)
	}
	return out, nil
}

// CleanCities drops cities without an id and duplicate ids. Ids are lower-cased.
func CleanCities(cities []models.City) []models.City {
	cleaned := []models.City{}
	seen := make(map[string]struct{})

	for _, c := range cities {
		c.ID = strings.ToLower(strings.TrimSpace(c.ID))
		if c.ID == "" || c.Name == "" {
			zap.L().Warn("skipping city with missing id or name", zap.String("name", c.Name))
			continue
		}
		if _, dup := seen[c.ID]; dup {
			zap.L().Warn("skipping duplicate city", zap.String("id", c.ID))
			continue
		}
		seen[c.ID] = struct{}{}
		cleaned = append(cleaned, c)
	}

	return cleaned
}

// CleanStations removes stations with invalid coordinates, missing ids or duplicate ids.
// Line names are lower-cased.
func CleanStations(city string, stations []models.Station) []models.Station {
	cleaned := []models.Station{}
	seen := make(map[string]struct{})

	for _, s := range stations {
		if s.ID == "" || s.Name == "" {
			zap.L().Warn("skipping station with missing id or name", zap.String("city", city), zap.String("id", s.ID))
			continue
		}
		if !geo.ValidCoordinates(s.Lat, s.Lng) {
			zap.L().Warn("skipping station with invalid coordinates",
				zap.String("city", city), zap.String("id", s.ID),
				zap.Float64("lat", s.Lat), zap.Float64("lng", s.Lng))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			zap.L().Warn("skipping duplicate station", zap.String("city", city), zap.String("id", s.ID))
			continue
		}
		seen[s.ID] = struct{}{}

		lines := make([]string, 0, len(s.Lines))
		for _, l := range s.Lines {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				lines = append(lines, l)
			}
		}
		s.Lines = lines

		cleaned = append(cleaned, s)
	}

	if len(cleaned) < len(stations) {
		zap.L().Info("cleaned stations", zap.String("city", city), zap.Int("removed", len(stations)-len(cleaned)))
	}

	return cleaned
}

// CleanBusRoutes trims stop names and removes routes with fewer than two stops
// or duplicate bus numbers. Unknown bus types are treated as regular, and
// missing end points are taken from the stop list.
func CleanBusRoutes(city string, routes []models.BusRoute) []models.BusRoute {
	cleaned := []models.BusRoute{}
	seen := make(map[string]struct{})

	for _, r := range routes {
		r.BusNumber = strings.TrimSpace(r.BusNumber)
		if r.BusNumber == "" {
			zap.L().Warn("skipping bus route without number", zap.String("city", city))
			continue
		}

		key := strings.ToUpper(r.BusNumber)
		if _, dup := seen[key]; dup {
			zap.L().Warn("skipping duplicate bus route", zap.String("city", city), zap.String("bus", r.BusNumber))
			continue
		}

		stops := make([]string, 0, len(r.Stops))
		for _, s := range r.Stops {
			if s = strings.TrimSpace(s); s != "" {
				stops = append(stops, s)
			}
		}
		if len(stops) < 2 {
			zap.L().Warn("skipping bus route with fewer than two stops", zap.String("city", city), zap.String("bus", r.BusNumber))
			continue
		}
		r.Stops = stops
		seen[key] = struct{}{}

		if r.Type != models.BusAC {
			r.Type = models.BusRegular
		}
		if r.StartPoint == "" {
			r.StartPoint = stops[0]
		}
		if r.EndPoint == "" {
			r.EndPoint = stops[len(stops)-1]
		}

		cleaned = append(cleaned, r)
	}

	return cleaned
}

// CleanPlaces removes places with unknown categories, invalid coordinates,
// missing ids or duplicate ids
func CleanPlaces(city string, places []models.Place) []models.Place {
	cleaned := []models.Place{}
	seen := make(map[string]struct{})

	for _, p := range places {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" || p.Name == "" {
			zap.L().Warn("skipping place with missing id or name", zap.String("city", city), zap.String("name", p.Name))
			continue
		}
		if !p.Category.Valid() {
			zap.L().Warn("skipping place with unknown category",
				zap.String("city", city), zap.String("id", p.ID), zap.String("category", string(p.Category)))
			continue
		}
		if !geo.ValidCoordinates(p.Lat, p.Lng) {
			zap.L().Warn("skipping place with invalid coordinates", zap.String("city", city), zap.String("id", p.ID))
			continue
		}
		if _, dup := seen[p.ID]; dup {
			zap.L().Warn("skipping duplicate place", zap.String("city", city), zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = struct{}{}
		cleaned = append(cleaned, p)
	}

	return cleaned
}
