package routing

import (
	"fmt"
	"math"
	"strings"

	"github.com/welcometomycity/citycore/internal/geo"
	"github.com/welcometomycity/citycore/internal/models"
)

const (
	interchangePenaltyMins = 5
	busDetourFactor        = 1.2
	busWaitMins            = 10
	busInterchangeKm       = 5.0
	walkThresholdKm        = 3.0
)

// Profile holds the speed and fare model of a transport mode
type Profile struct {
	Mode      models.Mode
	Name      string
	AvgSpeed  float64 // km/h
	BaseFare  float64 // INR
	PerKmFare float64 // INR
}

// Profiles lists the fixed speed/fare model for each mode
var Profiles = map[models.Mode]Profile{
	models.ModeMetro: {Mode: models.ModeMetro, Name: "Metro", AvgSpeed: 35, BaseFare: 5, PerKmFare: 1.5},
	models.ModeBus:   {Mode: models.ModeBus, Name: "Bus", AvgSpeed: 18, BaseFare: 7, PerKmFare: 0.8},
	models.ModeTaxi:  {Mode: models.ModeTaxi, Name: "Taxi / Auto", AvgSpeed: 22, BaseFare: 25, PerKmFare: 12},
	models.ModeWalk:  {Mode: models.ModeWalk, Name: "Walking", AvgSpeed: 5, BaseFare: 0, PerKmFare: 0},
}

// Minutes returns the whole minutes needed to cover km at the profile speed
func (p Profile) Minutes(km float64) int {
	return int(math.Ceil(km / p.AvgSpeed * 60))
}

// Fare returns the rounded-up fare for km
func (p Profile) Fare(km float64) int {
	return int(math.Ceil(p.BaseFare + km*p.PerKmFare))
}

// Estimator synthesizes a route option for one transport mode.
// Estimate returns false when the mode does not apply to the journey.
type Estimator interface {
	Mode() models.Mode
	Estimate(from, to models.Station, km float64) (models.RouteOption, bool)
}

// MetroEstimator rides the metro, adding an interchange when no line is shared
type MetroEstimator struct{}

func (e *MetroEstimator) Mode() models.Mode {
	return models.ModeMetro
}

func (e *MetroEstimator) Estimate(from, to models.Station, km float64) (models.RouteOption, bool) {
	p := Profiles[models.ModeMetro]
	rideMins := p.Minutes(km)

	interchanges := 0
	duration := rideMins
	if !SharesLine(from, to) {
		interchanges = 1
		duration += interchangePenaltyMins
	}

	line := ""
	instruction := fmt.Sprintf("Take metro to %s", to.Name)
	if len(from.Lines) > 0 {
		line = from.Lines[0]
		instruction = fmt.Sprintf("Take %s line to %s", strings.ToUpper(line), to.Name)
	}

	return models.RouteOption{
		ID:           string(models.ModeMetro),
		Type:         models.ModeMetro,
		From:         from.Name,
		To:           to.Name,
		Distance:     geo.RoundTenth(km),
		Duration:     duration,
		Cost:         p.Fare(km),
		Interchanges: interchanges,
		Steps: []models.RouteStep{
			{
				Type:        models.ModeWalk,
				From:        "Start",
				To:          from.Name,
				Duration:    5,
				Instruction: fmt.Sprintf("Walk to %s Metro Station", from.Name),
			},
			{
				Type:        models.ModeMetro,
				From:        from.Name,
				To:          to.Name,
				Line:        line,
				Duration:    rideMins,
				Instruction: instruction,
			},
			{
				Type:        models.ModeWalk,
				From:        to.Name,
				To:          "Destination",
				Duration:    3,
				Instruction: "Walk to your destination",
			},
		},
	}, true
}

// BusEstimator takes city buses: longer road distance plus waiting time
type BusEstimator struct{}

func (e *BusEstimator) Mode() models.Mode {
	return models.ModeBus
}

func (e *BusEstimator) Estimate(from, to models.Station, km float64) (models.RouteOption, bool) {
	p := Profiles[models.ModeBus]
	rideMins := p.Minutes(km)

	interchanges := 0
	if km > busInterchangeKm {
		interchanges = 1
	}

	return models.RouteOption{
		ID:           string(models.ModeBus),
		Type:         models.ModeBus,
		From:         from.Name,
		To:           to.Name,
		Distance:     geo.RoundTenth(km * busDetourFactor),
		Duration:     rideMins + busWaitMins,
		Cost:         p.Fare(km),
		Interchanges: interchanges,
		Steps: []models.RouteStep{
			{
				Type:        models.ModeWalk,
				From:        "Start",
				To:          "Bus Stop",
				Duration:    5,
				Instruction: "Walk to the nearest bus stop",
			},
			{
				Type:        models.ModeBus,
				From:        "Bus Stop",
				To:          "Destination Stop",
				Duration:    rideMins,
				Instruction: fmt.Sprintf("Take bus towards %s area", to.Name),
			},
			{
				Type:        models.ModeWalk,
				From:        "Bus Stop",
				To:          "Destination",
				Duration:    5,
				Instruction: "Walk to your destination",
			},
		},
	}, true
}

// TaxiEstimator goes door to door by taxi or auto
type TaxiEstimator struct{}

func (e *TaxiEstimator) Mode() models.Mode {
	return models.ModeTaxi
}

func (e *TaxiEstimator) Estimate(from, to models.Station, km float64) (models.RouteOption, bool) {
	p := Profiles[models.ModeTaxi]
	mins := p.Minutes(km)

	return models.RouteOption{
		ID:           string(models.ModeTaxi),
		Type:         models.ModeTaxi,
		From:         from.Name,
		To:           to.Name,
		Distance:     geo.RoundTenth(km),
		Duration:     mins,
		Cost:         p.Fare(km),
		Interchanges: 0,
		Steps: []models.RouteStep{
			{
				Type:        models.ModeTaxi,
				From:        from.Name,
				To:          to.Name,
				Duration:    mins,
				Instruction: fmt.Sprintf("Take taxi/auto directly to %s", to.Name),
			},
		},
	}, true
}

// WalkEstimator only applies below the walking threshold
type WalkEstimator struct{}

func (e *WalkEstimator) Mode() models.Mode {
	return models.ModeWalk
}

func (e *WalkEstimator) Estimate(from, to models.Station, km float64) (models.RouteOption, bool) {
	if km >= walkThresholdKm {
		return models.RouteOption{}, false
	}

	mins := Profiles[models.ModeWalk].Minutes(km)

	return models.RouteOption{
		ID:           string(models.ModeWalk),
		Type:         models.ModeWalk,
		From:         from.Name,
		To:           to.Name,
		Distance:     geo.RoundTenth(km),
		Duration:     mins,
		Cost:         0,
		Interchanges: 0,
		Steps: []models.RouteStep{
			{
				Type:        models.ModeWalk,
				From:        from.Name,
				To:          to.Name,
				Duration:    mins,
				Instruction: fmt.Sprintf("Walk directly to %s", to.Name),
			},
		},
	}, true
}

// SharesLine reports whether two stations have a metro line in common
func SharesLine(a, b models.Station) bool {
	for _, la := range a.Lines {
		for _, lb := range b.Lines {
			if la == lb {
				return true
			}
		}
	}
	return false
}

// GetEstimator returns the estimator for a mode, or nil for unknown modes
func GetEstimator(mode models.Mode) Estimator {
	switch mode {
	case models.ModeMetro:
		return &MetroEstimator{}
	case models.ModeBus:
		return &BusEstimator{}
	case models.ModeTaxi:
		return &TaxiEstimator{}
	case models.ModeWalk:
		return &WalkEstimator{}
	default:
		return nil
	}
}

// GetAllEstimators returns every estimator in tie-break order
func GetAllEstimators() []Estimator {
	return []Estimator{
		&MetroEstimator{},
		&BusEstimator{},
		&TaxiEstimator{},
		&WalkEstimator{},
	}
}
