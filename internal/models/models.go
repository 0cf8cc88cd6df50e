package models

// Category is one of the fixed attraction categories
type Category string

const (
	CategoryHistorical  Category = "historical"
	CategoryCultural    Category = "cultural"
	CategoryReligious   Category = "religious"
	CategoryFoodMarkets Category = "food-markets"
	CategoryNature      Category = "nature"
)

// AllCategories returns the categories in display order
func AllCategories() []Category {
	return []Category{
		CategoryHistorical,
		CategoryCultural,
		CategoryReligious,
		CategoryFoodMarkets,
		CategoryNature,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Mode represents a way of travelling between two points
type Mode string

const (
	ModeMetro Mode = "metro"
	ModeBus   Mode = "bus"
	ModeTaxi  Mode = "taxi"
	ModeWalk  Mode = "walk"
)

// BusType distinguishes AC buses from regular ones
type BusType string

const (
	BusRegular BusType = "regular"
	BusAC      BusType = "ac"
)

// City is a supported metro city
type City struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	State         string `json:"state"`
	Tagline       string `json:"tagline"`
	Description   string `json:"description"`
	HasMetro      bool   `json:"has_metro"`
	MetroLines    int    `json:"metro_lines"`
	MetroStations int    `json:"metro_stations"`
	Population    string `json:"population"`
	PrimaryColor  string `json:"primary_color"`
}

// Station is a metro station
type Station struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lng   float64  `json:"lng"`
	Lines []string `json:"lines"`
}

// BusRoute is a city bus service with its ordered stop list
type BusRoute struct {
	BusNumber      string   `json:"bus_number"`
	StartPoint     string   `json:"start_point"`
	EndPoint       string   `json:"end_point"`
	Stops          []string `json:"stops"`
	Frequency      string   `json:"frequency,omitempty"`
	OperatingHours string   `json:"operating_hours,omitempty"`
	Type           BusType  `json:"type"`
}

// IsAC reports whether the route runs air-conditioned buses
func (r BusRoute) IsAC() bool {
	return r.Type == BusAC
}

// Place is a tourist attraction
type Place struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Description   string   `json:"description"`
	BestTime      string   `json:"best_time"`
	EntryFee      string   `json:"entry_fee"`
	NearbyStation string   `json:"nearby_station"`
	Image         string   `json:"image"`
	ImageQuery    string   `json:"image_query,omitempty"`
}

// RouteStep is one leg of a route option
type RouteStep struct {
	Type        Mode   `json:"type"`
	From        string `json:"from"`
	To          string `json:"to"`
	Line        string `json:"line,omitempty"`
	Duration    int    `json:"duration_minutes"`
	Instruction string `json:"instruction"`
}

// RouteOption is one way of getting between two stations
type RouteOption struct {
	ID           string      `json:"id"`
	Type         Mode        `json:"type"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	Distance     float64     `json:"distance_km"`
	Duration     int         `json:"duration_minutes"`
	Cost         int         `json:"cost_inr"`
	Interchanges int         `json:"interchanges"`
	Steps        []RouteStep `json:"steps"`
}

// BusMatch is a bus route serving an origin stop before a destination stop
type BusMatch struct {
	Route             BusRoute `json:"route"`
	FromIndex         int      `json:"from_index"`
	ToIndex           int      `json:"to_index"`
	StopsInBetween    []string `json:"stops_in_between"`
	EstimatedDuration int      `json:"estimated_duration_minutes"`
	EstimatedFare     int      `json:"estimated_fare_inr"`
}

// ItineraryDay is one day of a sightseeing plan
type ItineraryDay struct {
	Day           int     `json:"day"`
	Places        []Place `json:"places"`
	TotalDistance float64 `json:"total_distance_km"`
	TotalDuration int     `json:"total_duration_minutes"`
}
