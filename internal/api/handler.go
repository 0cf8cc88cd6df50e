// Package api exposes the city guide over HTTP.
package api

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/welcometomycity/citycore/internal/busmatch"
	"github.com/welcometomycity/citycore/internal/cache"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/db"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/places"
	"github.com/welcometomycity/citycore/internal/routing"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Handler serves the HTTP endpoints
type Handler struct {
	store    *dataset.Store
	planner  *routing.Planner
	matchers map[string]*busmatch.Matcher
	places   *places.Service
	cache    cache.Cache
	pool     *pgxpool.Pool
	logger   *zap.Logger
}

// NewHandler creates a handler. pool may be nil when data is embedded.
func NewHandler(store *dataset.Store, svc *places.Service, c cache.Cache, pool *pgxpool.Pool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	matchers := make(map[string]*busmatch.Matcher)
	for _, city := range store.Cities() {
		matchers[city.ID] = busmatch.NewMatcher(store.BusRoutes(city.ID))
	}

	return &Handler{
		store:    store,
		planner:  routing.NewPlanner(),
		matchers: matchers,
		places:   svc,
		cache:    c,
		pool:     pool,
		logger:   logger,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	healthy := true
	checks := fiber.Map{}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			healthy = false
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}
		checks["cache_backend"] = h.cache.Backend()
	}

	if h.pool != nil {
		if err := db.HealthCheck(ctx, h.pool); err != nil {
			healthy = false
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}
	}

	status, httpStatus := "healthy", fiber.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":            status,
		"checks":            checks,
		"dataset":           h.store.Counts(),
		"places_configured": h.places.Configured(),
	})
}

// ListCities handles GET /v1/cities
func (h *Handler) ListCities(c *fiber.Ctx) error {
	cities := h.store.Cities()
	return c.JSON(fiber.Map{
		"cities": cities,
		"count":  len(cities),
	})
}

// GetCity handles GET /v1/cities/:city
func (h *Handler) GetCity(c *fiber.Ctx) error {
	city, err := h.city(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"city":        city,
		"has_transit": h.store.HasTransit(city.ID),
	})
}

// ListStations handles GET /v1/cities/:city/stations?q=
func (h *Handler) ListStations(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	stations := h.store.SearchStations(city.ID, c.Query("q"))
	return c.JSON(fiber.Map{
		"stations": stations,
		"count":    len(stations),
	})
}

func (h *Handler) city(c *fiber.Ctx) (models.City, error) {
	id := strings.TrimSpace(c.Params("city"))
	city, ok := h.store.City(id)
	if !ok {
		return models.City{}, newError(fiber.StatusNotFound, "city_not_found", "city %q not found", id)
	}
	return city, nil
}

// transitCity resolves the city and requires transport data for it
func (h *Handler) transitCity(c *fiber.Ctx) (models.City, error) {
	city, err := h.city(c)
	if err != nil {
		return city, err
	}

	if !h.store.HasTransit(city.ID) {
		apiErr := newError(fiber.StatusNotFound, "transit_unavailable",
			"Transport data for %s is coming soon", city.Name)
		apiErr.Details = fiber.Map{
			"metro_lines":    city.MetroLines,
			"metro_stations": city.MetroStations,
		}
		return city, apiErr
	}

	return city, nil
}
