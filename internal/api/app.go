package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/welcometomycity/citycore/internal/config"
	"github.com/welcometomycity/citycore/internal/middleware"
)

// Error is an API error rendered as JSON by the app's error handler
type Error struct {
	Status  int
	Code    string
	Message string
	Details fiber.Map
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewApp creates the Fiber app with middleware and all routes registered
func NewApp(h *Handler, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "citycore API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Places.GenerateTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(h.logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", h.Health)

	v1 := app.Group("/v1")
	v1.Get("/cities", h.ListCities)

	city := v1.Group("/cities/:city")
	city.Get("", h.GetCity)
	city.Get("/stations", h.ListStations)
	city.Get("/routes", h.FindRoutes)

	city.Get("/bus/search", h.SearchBuses)
	city.Get("/bus/stops", h.SearchStops)
	city.Get("/bus/routes", h.ListBusRoutes)
	city.Get("/bus/routes/:number", h.GetBusRoute)

	city.Get("/places", h.ListPlaces)
	city.Post("/places/generate",
		middleware.RateLimit(h.cache, "generate", cfg.Places.RateLimit, cfg.Places.RateWindow, h.logger),
		h.GeneratePlaces)
	city.Get("/places/:id", h.GetPlace)

	city.Get("/itinerary", h.Itinerary)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "The requested endpoint does not exist",
			"path":    c.Path(),
		})
	})

	return app
}

// customErrorHandler renders errors as JSON
func customErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		body := fiber.Map{
			"error":   apiErr.Code,
			"message": apiErr.Message,
		}
		for k, v := range apiErr.Details {
			body[k] = v
		}
		return c.Status(apiErr.Status).JSON(body)
	}

	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	slug := "internal_error"
	if code < 500 {
		slug = strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   slug,
		"message": err.Error(),
	})
}
