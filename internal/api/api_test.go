package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welcometomycity/citycore/internal/cache"
	"github.com/welcometomycity/citycore/internal/config"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/places"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	err error
}

func (s stubGenerator) Generate(_ context.Context, city models.City) ([]models.Place, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Place, 12)
	for i := range out {
		out[i] = models.Place{
			ID:       fmt.Sprintf("%s-%d", city.ID, i),
			Name:     fmt.Sprintf("Sight %d", i),
			Category: models.AllCategories()[i%5],
			Lat:      22.5 + float64(i)*0.01,
			Lng:      88.35,
		}
	}
	return out, nil
}

func newTestApp(t *testing.T, gen places.Generator, rateLimit int) *fiber.App {
	t.Helper()
	return newTestAppWithLogger(t, gen, rateLimit, zap.NewNop())
}

func newTestAppWithLogger(t *testing.T, gen places.Generator, rateLimit int, logger *zap.Logger) *fiber.App {
	t.Helper()

	store, err := dataset.LoadEmbedded()
	require.NoError(t, err)

	c := cache.NewLocalCache()
	svc := places.NewService(store, gen, c, zap.NewNop(), places.Options{})

	cfg := config.Default()
	cfg.Places.RateLimit = rateLimit

	return NewApp(NewHandler(store, svc, c, nil, logger), cfg)
}

func request(t *testing.T, app *fiber.App, method, path string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil, 0)

	status, body := request(t, app, "GET", "/health")
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["places_configured"])

	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["cache"])
	assert.Equal(t, "memory", checks["cache_backend"])
	assert.NotContains(t, checks, "database")
}

func TestCities(t *testing.T) {
	app := newTestApp(t, nil, 0)

	status, body := request(t, app, "GET", "/v1/cities")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(12), body["count"])

	status, body = request(t, app, "GET", "/v1/cities/Kolkata")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["has_transit"])
	assert.Equal(t, "kolkata", body["city"].(map[string]any)["id"])

	status, body = request(t, app, "GET", "/v1/cities/delhi")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["has_transit"])
}

func TestErrors(t *testing.T) {
	app := newTestApp(t, nil, 0)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"Unknown endpoint", "/v2/anything", 404, "not_found"},
		{"Unknown city", "/v1/cities/atlantis", 404, "city_not_found"},
		{"No transit data", "/v1/cities/delhi/routes?from=a&to=b", 404, "transit_unavailable"},
		{"Missing params", "/v1/cities/kolkata/routes?from=esplanade", 400, "invalid_request"},
		{"Unknown station", "/v1/cities/kolkata/routes?from=esplanade&to=atlantis", 404, "station_not_found"},
		{"Same station", "/v1/cities/kolkata/routes?from=esplanade&to=Esplanade", 400, "invalid_request"},
		{"Bad bus type", "/v1/cities/kolkata/bus/routes?type=sleeper", 400, "invalid_request"},
		{"Unknown bus", "/v1/cities/kolkata/bus/routes/999Z", 404, "route_not_found"},
		{"Bad category", "/v1/cities/kolkata/places?category=shopping", 400, "invalid_request"},
		{"Unknown place", "/v1/cities/kolkata/places/atlantis", 404, "place_not_found"},
		{"Too many days", "/v1/cities/kolkata/itinerary?days=5", 400, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := request(t, app, "GET", tt.path)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAccessLogStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newTestAppWithLogger(t, nil, 0, zap.New(core))

	tests := []struct {
		path   string
		status int
	}{
		{"/v1/cities/kolkata", 200},
		{"/v1/cities/atlantis", 404},
		{"/v1/cities/delhi/routes?from=a&to=b", 404},
		{"/v1/cities/kolkata/itinerary?days=9", 400},
		{"/v1/cities/kolkata/bus/routes?type=sleeper", 400},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			before := logs.Len()

			status, _ := request(t, app, "GET", tt.path)
			require.Equal(t, tt.status, status)

			entries := logs.All()
			require.Len(t, entries, before+1)
			entry := entries[before]
			assert.Equal(t, int64(tt.status), entry.ContextMap()["status"])
			if tt.status >= 400 {
				assert.Equal(t, zap.WarnLevel, entry.Level)
			} else {
				assert.Equal(t, zap.InfoLevel, entry.Level)
			}
		})
	}
}

func TestTransitUnavailableCarriesCounts(t *testing.T) {
	app := newTestApp(t, nil, 0)

	_, body := request(t, app, "GET", "/v1/cities/delhi/bus/stops?q=ab")
	assert.Contains(t, body["message"], "coming soon")
	assert.Equal(t, float64(12), body["metro_lines"])
	assert.Equal(t, float64(286), body["metro_stations"])
}

func TestStations(t *testing.T) {
	app := newTestApp(t, nil, 0)

	status, body := request(t, app, "GET", "/v1/cities/kolkata/stations?q=kavi")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(2), body["count"])
}

func TestFindRoutes(t *testing.T) {
	app := newTestApp(t, nil, 0)

	status, body := request(t, app, "GET", "/v1/cities/kolkata/routes?from=Park%20Street&to=Esplanade")
	require.Equal(t, 200, status)

	routes := body["routes"].([]any)
	require.NotEmpty(t, routes)
	assert.Equal(t, "park-street", body["from"].(map[string]any)["id"])
	assert.Equal(t, routes[0].(map[string]any)["id"], body["fastest"])
	assert.NotEmpty(t, body["cheapest"])

	buses := body["bus_options"].([]any)
	assert.NotEmpty(t, buses)
	assert.LessOrEqual(t, len(buses), 3)
}

func TestBusEndpoints(t *testing.T) {
	app := newTestApp(t, nil, 0)

	t.Run("Search", func(t *testing.T) {
		status, body := request(t, app, "GET", "/v1/cities/kolkata/bus/search?from=Howrah&to=Esplanade")
		assert.Equal(t, 200, status)
		assert.NotZero(t, body["count"])
	})

	t.Run("Stops", func(t *testing.T) {
		_, body := request(t, app, "GET", "/v1/cities/kolkata/bus/stops?q=espl")
		assert.Contains(t, body["stops"], "Esplanade")

		_, body = request(t, app, "GET", "/v1/cities/kolkata/bus/stops?q=e")
		assert.Equal(t, float64(0), body["count"])

		_, body = request(t, app, "GET", "/v1/cities/kolkata/bus/stops?q=an&limit=2")
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("Routes by type", func(t *testing.T) {
		_, body := request(t, app, "GET", "/v1/cities/kolkata/bus/routes?type=ac")
		counts := body["counts"].(map[string]any)
		assert.Equal(t, counts["ac"], body["count"])
		assert.Equal(t, counts["total"], counts["ac"].(float64)+counts["regular"].(float64))
	})

	t.Run("Route by number", func(t *testing.T) {
		status, body := request(t, app, "GET", "/v1/cities/kolkata/bus/routes/s-9a")
		assert.Equal(t, 200, status)
		assert.Equal(t, "S-9A", body["bus_number"])
	})
}

func TestPlaces(t *testing.T) {
	app := newTestApp(t, nil, 0)

	_, body := request(t, app, "GET", "/v1/cities/kolkata/places?category=Nature")
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, float64(3), body["categories"].(map[string]any)["historical"])

	status, body := request(t, app, "GET", "/v1/cities/kolkata/places/howrah-bridge")
	assert.Equal(t, 200, status)
	assert.Equal(t, "historical", body["category"])
}

func TestGeneratePlaces(t *testing.T) {
	t.Run("Generated", func(t *testing.T) {
		app := newTestApp(t, stubGenerator{}, 0)
		status, body := request(t, app, "POST", "/v1/cities/kolkata/places/generate")
		assert.Equal(t, 200, status)
		assert.Len(t, body["places"], 12)
		assert.NotContains(t, body, "error")

		_, body = request(t, app, "POST", "/v1/cities/kolkata/places/generate")
		assert.Equal(t, true, body["cached"])
	})

	t.Run("Fallback", func(t *testing.T) {
		app := newTestApp(t, stubGenerator{err: fmt.Errorf("RESOURCE_EXHAUSTED")}, 0)
		_, body := request(t, app, "POST", "/v1/cities/delhi/places/generate")
		assert.Equal(t, true, body["is_fallback"])
		assert.NotEmpty(t, body["places"])
	})

	t.Run("Not configured", func(t *testing.T) {
		app := newTestApp(t, nil, 0)
		_, body := request(t, app, "POST", "/v1/cities/nagpur/places/generate")
		assert.Equal(t, true, body["setup_required"])
		assert.Contains(t, body["error"], "not configured")
	})

	t.Run("Rate limited", func(t *testing.T) {
		app := newTestApp(t, stubGenerator{}, 2)
		for i := 0; i < 2; i++ {
			status, _ := request(t, app, "POST", "/v1/cities/kolkata/places/generate")
			assert.Equal(t, 200, status)
		}
		status, body := request(t, app, "POST", "/v1/cities/kolkata/places/generate")
		assert.Equal(t, 429, status)
		assert.Equal(t, "rate_limit_exceeded", body["error"])
	})
}

func TestItinerary(t *testing.T) {
	app := newTestApp(t, nil, 0)

	tests := []struct {
		query string
		days  int
	}{
		{"", 1},
		{"?days=2", 2},
		{"?days=3", 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			status, body := request(t, app, "GET", "/v1/cities/kolkata/itinerary"+tt.query)
			require.Equal(t, 200, status)
			plan := body["itinerary"].([]any)
			require.Len(t, plan, tt.days)
			first := plan[0].(map[string]any)
			assert.Equal(t, float64(1), first["day"])
			assert.NotEmpty(t, first["places"])
		})
	}
}
