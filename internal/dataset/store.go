package dataset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/welcometomycity/citycore/internal/models"
	"go.uber.org/zap"
)

// ErrUnknownCity is returned for city ids that are not in the dataset
var ErrUnknownCity = errors.New("city not found")

//go:embed fixtures/*.json
var fixtures embed.FS

// Store holds the reference data for every city. It is read-only once built.
type Store struct {
	cities   []models.City
	byID     map[string]models.City
	stations map[string][]models.Station
	buses    map[string][]models.BusRoute
	places   map[string][]models.Place
}

// NewStore builds a store. Per-city maps are keyed by lower-case city id.
func NewStore(
	cities []models.City,
	stations map[string][]models.Station,
	buses map[string][]models.BusRoute,
	places map[string][]models.Place,
) *Store {
	s := &Store{
		cities:   cities,
		byID:     make(map[string]models.City, len(cities)),
		stations: nonNil(stations),
		buses:    nonNil(buses),
		places:   nonNil(places),
	}
	for _, c := range cities {
		s.byID[c.ID] = c
	}
	return s
}

func nonNil[T any](m map[string][]T) map[string][]T {
	if m == nil {
		return make(map[string][]T)
	}
	return m
}

// LoadEmbedded builds a store from the fixtures compiled into the binary
func LoadEmbedded() (*Store, error) {
	return LoadFS(fixtures, "fixtures")
}

// LoadFS builds a store from cities.json, stations.json, buses.json and
// places.json in dir
func LoadFS(fsys fs.FS, dir string) (*Store, error) {
	open := func(name string) (fs.File, error) {
		f, err := fsys.Open(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		return f, nil
	}

	f, err := open("cities.json")
	if err != nil {
		return nil, err
	}
	cities, err := ParseCities(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = open("stations.json")
	if err != nil {
		return nil, err
	}
	stations, err := ParseStations(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = open("buses.json")
	if err != nil {
		return nil, err
	}
	buses, err := ParseBusRoutes(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	f, err = open("places.json")
	if err != nil {
		return nil, err
	}
	places, err := ParsePlaces(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	store := NewStore(cities, stations, buses, places)
	zap.L().Info("dataset loaded",
		zap.Int("cities", len(cities)),
		zap.Int("transit_cities", len(stations)),
		zap.Int("place_cities", len(places)))

	return store, nil
}

// Cities returns every city in display order
func (s *Store) Cities() []models.City {
	return s.cities
}

// City looks up a city by id, ignoring case
func (s *Store) City(id string) (models.City, bool) {
	c, ok := s.byID[strings.ToLower(id)]
	return c, ok
}

// CityByName looks up a city by display name, ignoring case
func (s *Store) CityByName(name string) (models.City, bool) {
	for _, c := range s.cities {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.City{}, false
}

// HasTransit reports whether metro stations are available for a city
func (s *Store) HasTransit(cityID string) bool {
	return len(s.stations[strings.ToLower(cityID)]) > 0
}

// Stations returns a city's metro stations
func (s *Store) Stations(cityID string) []models.Station {
	if st, ok := s.stations[strings.ToLower(cityID)]; ok {
		return st
	}
	return []models.Station{}
}

// Station looks up a station by exact id
func (s *Store) Station(cityID, id string) (models.Station, bool) {
	for _, st := range s.Stations(cityID) {
		if st.ID == id {
			return st, true
		}
	}
	return models.Station{}, false
}

// FindStation resolves free text to a station. Exact id or name matches win;
// otherwise the first station whose name or id contains the query is returned.
func (s *Store) FindStation(cityID, query string) (models.Station, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return models.Station{}, false
	}

	stations := s.Stations(cityID)
	for _, st := range stations {
		if strings.EqualFold(st.ID, q) || strings.EqualFold(st.Name, q) {
			return st, true
		}
	}
	for _, st := range stations {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(strings.ToLower(st.ID), q) {
			return st, true
		}
	}
	return models.Station{}, false
}

// SearchStations returns stations whose name or id contains query.
// An empty query returns all stations.
func (s *Store) SearchStations(cityID, query string) []models.Station {
	q := strings.ToLower(strings.TrimSpace(query))
	stations := s.Stations(cityID)
	if q == "" {
		return stations
	}

	matches := []models.Station{}
	for _, st := range stations {
		if strings.Contains(strings.ToLower(st.Name), q) || strings.Contains(strings.ToLower(st.ID), q) {
			matches = append(matches, st)
		}
	}
	return matches
}

// BusRoutes returns a city's bus routes
func (s *Store) BusRoutes(cityID string) []models.BusRoute {
	if r, ok := s.buses[strings.ToLower(cityID)]; ok {
		return r
	}
	return []models.BusRoute{}
}

// CuratedPlaces returns the hand-picked attractions for a city
func (s *Store) CuratedPlaces(cityID string) []models.Place {
	if p, ok := s.places[strings.ToLower(cityID)]; ok {
		return p
	}
	return []models.Place{}
}

// Place looks up a curated place by id
func (s *Store) Place(cityID, id string) (models.Place, bool) {
	for _, p := range s.CuratedPlaces(cityID) {
		if p.ID == id {
			return p, true
		}
	}
	return models.Place{}, false
}

// Counts summarises the store for health output
func (s *Store) Counts() map[string]int {
	counts := map[string]int{"cities": len(s.cities)}
	for _, st := range s.stations {
		counts["stations"] += len(st)
	}
	for _, r := range s.buses {
		counts["bus_routes"] += len(r)
	}
	for _, p := range s.places {
		counts["places"] += len(p)
	}
	return counts
}
