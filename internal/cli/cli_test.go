package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("GEMINI_API_KEY", "")

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{"Cities", []string{"cities"}, []string{"Kolkata", "transport available", "transport coming soon"}, nil},
		{"Stations", []string{"stations", "kavi"}, []string{"Kavi Subhash", "Kavi Nazrul"}, []string{"Esplanade"}},
		{"Routes", []string{"routes", "Park Street", "Esplanade"}, []string{"Park Street -> Esplanade", "Metro", "[Fastest]", "[Cheapest]"}, nil},
		{"Bus", []string{"bus", "Howrah", "Esplanade"}, []string{"S-9A", "Howrah"}, nil},
		{"No bus", []string{"bus", "Jadavpur", "Howrah"}, []string{"No direct bus found"}, nil},
		{"Stops", []string{"stops", "espl"}, []string{"Esplanade"}, nil},
		{"Places by category", []string{"places", "--category", "Nature"}, []string{"Nature"}, []string{"Historical"}},
		{"Places by name", []string{"places", "--search", "howrah"}, []string{"Howrah Bridge"}, nil},
		{"Itinerary", []string{"itinerary", "--days", "2"}, []string{"2-day itinerary for Kolkata", "Day 1", "Day 2"}, []string{"Day 3"}},
		{"Other city by name", []string{"itinerary", "--city", "Delhi"}, []string{"1-day itinerary for Delhi"}, nil},
		{"Generate falls back", []string{"generate"}, []string{"Curated places in Kolkata (AI unavailable)"}, nil},
		{"Generate without data", []string{"generate", "--city", "nagpur"}, []string{"not configured", "GEMINI_API_KEY"}, nil},
		{"Check", []string{"check"}, []string{"skipped", "disabled", "not configured"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err, out)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"Unknown city", []string{"places", "--city", "atlantis"}, "city not found"},
		{"No transit", []string{"routes", "a", "b", "--city", "delhi"}, "coming soon"},
		{"Unknown station", []string{"routes", "Esplanade", "Atlantis"}, "not found"},
		{"Same station", []string{"routes", "esplanade", "Esplanade"}, "must be different"},
		{"Bad category", []string{"places", "--category", "shopping"}, "unknown category"},
		{"Bad days", []string{"itinerary", "--days", "4"}, "days"},
		{"Missing args", []string{"bus", "Howrah"}, "accepts 2 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadFixtures(t *testing.T) {
	t.Run("Embedded by default", func(t *testing.T) {
		source, store, err := loadFixtures("")
		require.NoError(t, err)
		assert.Equal(t, "embedded", source)
		assert.True(t, store.HasTransit("kolkata"))
	})

	t.Run("Directory only", func(t *testing.T) {
		dir := t.TempDir()
		files := map[string]string{
			"cities.json":   `{"cities":[{"id":"testville","name":"Testville"}]}`,
			"stations.json": `{}`,
			"buses.json":    `{}`,
			"places.json":   `{}`,
		}
		for name, body := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
		}

		source, store, err := loadFixtures(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, source)
		assert.Len(t, store.Cities(), 1)
		_, ok := store.City("kolkata")
		assert.False(t, ok)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, _, err := loadFixtures(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})
}
