package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/welcometomycity/citycore/internal/itinerary"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/places"
)

// ListPlaces handles GET /v1/cities/:city/places?category=&q=
func (h *Handler) ListPlaces(c *fiber.Ctx) error {
	city, err := h.city(c)
	if err != nil {
		return err
	}

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category != "" && category != places.CategoryAll && !models.Category(category).Valid() {
		return newError(fiber.StatusBadRequest, "invalid_request", "unknown category %q", category)
	}

	curated := h.store.CuratedPlaces(city.ID)
	filtered := places.Filter(curated, category, c.Query("q"))
	return c.JSON(fiber.Map{
		"places":     filtered,
		"count":      len(filtered),
		"categories": places.CountByCategory(curated),
	})
}

// GetPlace handles GET /v1/cities/:city/places/:id
func (h *Handler) GetPlace(c *fiber.Ctx) error {
	city, err := h.city(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	place, ok := h.store.Place(city.ID, id)
	if !ok {
		return newError(fiber.StatusNotFound, "place_not_found", "place %q not found", id)
	}
	return c.JSON(place)
}

// GeneratePlaces handles POST /v1/cities/:city/places/generate.
// Failures are reported in the body with status 200, matching the result shape.
func (h *Handler) GeneratePlaces(c *fiber.Ctx) error {
	city, err := h.city(c)
	if err != nil {
		return err
	}

	result := h.places.Generate(c.UserContext(), city.ID)
	c.Locals("cache_hit", result.Cached)
	return c.JSON(result)
}

// Itinerary handles GET /v1/cities/:city/itinerary?days=
func (h *Handler) Itinerary(c *fiber.Ctx) error {
	city, err := h.city(c)
	if err != nil {
		return err
	}

	days := c.QueryInt("days", itinerary.MinDays)
	plan, err := itinerary.Generate(h.store.CuratedPlaces(city.ID), days)
	if errors.Is(err, itinerary.ErrInvalidDays) {
		return newError(fiber.StatusBadRequest, "invalid_request",
			"days must be between %d and %d", itinerary.MinDays, itinerary.MaxDays)
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"city":      city.ID,
		"days":      days,
		"itinerary": plan,
	})
}
