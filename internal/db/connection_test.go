package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/welcometomycity/citycore/internal/config"
)

func TestConnString(t *testing.T) {
	cfg := config.Default().Database
	cfg.Password = "secret"

	assert.Equal(t,
		"host=localhost port=5432 dbname=citycore user=postgres password=secret sslmode=disable",
		ConnString(cfg))
}

func TestSchemaTables(t *testing.T) {
	for _, table := range []string{"city", "station", "bus_route", "place", "import_log"} {
		t.Run(table, func(t *testing.T) {
			assert.True(t, strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS "+table+" ("))
		})
	}
}

func TestSchemaCascadesCityDeletes(t *testing.T) {
	assert.Equal(t, 3, strings.Count(Schema, "REFERENCES city(id) ON DELETE CASCADE"))
}

func TestHealthCheckNilPool(t *testing.T) {
	assert.Error(t, HealthCheck(t.Context(), nil))
}
