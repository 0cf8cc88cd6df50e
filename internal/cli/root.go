// Package cli implements cityctl, a terminal client for the city guide.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/welcometomycity/citycore/internal/bootstrap"
	"github.com/welcometomycity/citycore/internal/config"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/logging"
	"github.com/welcometomycity/citycore/internal/models"
	"go.uber.org/zap"
)

// DefaultCity is used when --city is not given
const DefaultCity = "kolkata"

type state struct {
	configPath string
	cityID     string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	runtime *bootstrap.Runtime
}

// NewRootCmd builds the cityctl command tree
func NewRootCmd() *cobra.Command {
	s := &state{}

	root := &cobra.Command{
		Use:   "cityctl",
		Short: "Explore Indian metro cities from the terminal",
		Long: `cityctl plans metro, bus, taxi and walking routes, searches city bus
services, lists attractions and builds sightseeing itineraries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	root.PersistentFlags().StringVar(&s.configPath, "config", os.Getenv(config.ConfigPathEnv), "path to a YAML config file")
	root.PersistentFlags().StringVar(&s.cityID, "city", DefaultCity, "city to work with")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		citiesCmd(s),
		stationsCmd(s),
		routesCmd(s),
		busCmd(s),
		stopsCmd(s),
		placesCmd(s),
		itineraryCmd(s),
		generateCmd(s),
		seedCmd(s),
		checkCmd(s),
	)

	return root
}

// Execute runs cityctl and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (s *state) setup() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	level := "warn"
	if s.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		return err
	}
	s.logger = logger
	return nil
}

func (s *state) close() error {
	if s.runtime != nil {
		if err := s.runtime.Close(); err != nil {
			return err
		}
		s.runtime = nil
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return nil
}

// open lazily loads data and services
func (s *state) open(ctx context.Context) (*bootstrap.Runtime, error) {
	if s.runtime != nil {
		return s.runtime, nil
	}
	rt, err := bootstrap.Open(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.runtime = rt
	return rt, nil
}

// city opens the runtime and resolves --city by id or name
func (s *state) city(ctx context.Context) (*bootstrap.Runtime, models.City, error) {
	rt, err := s.open(ctx)
	if err != nil {
		return nil, models.City{}, err
	}

	query := strings.TrimSpace(s.cityID)
	city, ok := rt.Store.City(query)
	if !ok {
		city, ok = rt.Store.CityByName(query)
	}
	if !ok {
		return nil, models.City{}, fmt.Errorf("%w: %q (run 'cityctl cities' to list them)", dataset.ErrUnknownCity, s.cityID)
	}
	return rt, city, nil
}

// transitCity is city but requires transport data
func (s *state) transitCity(ctx context.Context) (*bootstrap.Runtime, models.City, error) {
	rt, city, err := s.city(ctx)
	if err != nil {
		return nil, city, err
	}
	if !rt.Store.HasTransit(city.ID) {
		return nil, city, fmt.Errorf("transport data for %s is coming soon (%d metro lines, %d stations)",
			city.Name, city.MetroLines, city.MetroStations)
	}
	return rt, city, nil
}
