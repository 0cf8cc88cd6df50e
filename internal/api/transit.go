package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/welcometomycity/citycore/internal/busmatch"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/routing"
	"golang.org/x/sync/errgroup"
)

// routeBusOptions caps the bus matches returned alongside route options
const routeBusOptions = 3

// FindRoutes handles GET /v1/cities/:city/routes?from=&to=
func (h *Handler) FindRoutes(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	fromQuery, toQuery := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if fromQuery == "" || toQuery == "" {
		return newError(fiber.StatusBadRequest, "invalid_request", "missing required parameters: from and to")
	}

	from, ok := h.store.FindStation(city.ID, fromQuery)
	if !ok {
		return newError(fiber.StatusNotFound, "station_not_found", "station %q not found", fromQuery)
	}
	to, ok := h.store.FindStation(city.ID, toQuery)
	if !ok {
		return newError(fiber.StatusNotFound, "station_not_found", "station %q not found", toQuery)
	}
	if from.ID == to.ID {
		return newError(fiber.StatusBadRequest, "invalid_request", "from and to must be different stations")
	}

	// Route options and bus matches are independent
	var (
		routes []models.RouteOption
		buses  []models.BusMatch
	)
	g, _ := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		routes = h.planner.FindRoutes(from, to)
		return nil
	})
	g.Go(func() error {
		buses = h.matcher(city.ID).FindRoutes(from.Name, to.Name)
		if len(buses) > routeBusOptions {
			buses = buses[:routeBusOptions]
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	resp := fiber.Map{
		"from":        from,
		"to":          to,
		"routes":      routes,
		"bus_options": buses,
	}
	if fastest, ok := routing.Fastest(routes); ok {
		resp["fastest"] = fastest.ID
	}
	if cheapest, ok := routing.Cheapest(routes); ok {
		resp["cheapest"] = cheapest.ID
	}

	return c.JSON(resp)
}

// SearchBuses handles GET /v1/cities/:city/bus/search?from=&to=
func (h *Handler) SearchBuses(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	from, to := c.Query("from"), c.Query("to")
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return newError(fiber.StatusBadRequest, "invalid_request", "missing required parameters: from and to")
	}

	matches := h.matcher(city.ID).FindRoutes(from, to)
	return c.JSON(fiber.Map{
		"from":    from,
		"to":      to,
		"matches": matches,
		"count":   len(matches),
	})
}

// SearchStops handles GET /v1/cities/:city/bus/stops?q=&limit=
func (h *Handler) SearchStops(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", busmatch.DefaultSearchLimit)
	stops := h.matcher(city.ID).SearchStops(c.Query("q"), limit)
	return c.JSON(fiber.Map{
		"stops": stops,
		"count": len(stops),
	})
}

// ListBusRoutes handles GET /v1/cities/:city/bus/routes?type=
func (h *Handler) ListBusRoutes(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	busType := models.BusType(strings.ToLower(c.Query("type")))
	if busType != "" && busType != models.BusAC && busType != models.BusRegular {
		return newError(fiber.StatusBadRequest, "invalid_request", "type must be %q or %q", models.BusAC, models.BusRegular)
	}

	m := h.matcher(city.ID)
	routes := m.Routes(busType)
	return c.JSON(fiber.Map{
		"routes": routes,
		"count":  len(routes),
		"counts": fiber.Map{
			"total":   len(m.Routes("")),
			"ac":      len(m.Routes(models.BusAC)),
			"regular": len(m.Routes(models.BusRegular)),
		},
	})
}

// GetBusRoute handles GET /v1/cities/:city/bus/routes/:number
func (h *Handler) GetBusRoute(c *fiber.Ctx) error {
	city, err := h.transitCity(c)
	if err != nil {
		return err
	}

	number := c.Params("number")
	route, ok := h.matcher(city.ID).Route(number)
	if !ok {
		return newError(fiber.StatusNotFound, "route_not_found", "bus route %q not found", number)
	}
	return c.JSON(route)
}

func (h *Handler) matcher(cityID string) *busmatch.Matcher {
	if m, ok := h.matchers[cityID]; ok {
		return m
	}
	return busmatch.NewMatcher(nil)
}
