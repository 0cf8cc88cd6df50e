package dataset

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welcometomycity/citycore/internal/busmatch"
	"github.com/welcometomycity/citycore/internal/models"
	"github.com/welcometomycity/citycore/internal/routing"
)

func TestParseCities(t *testing.T) {
	input := `{"cities": [
		{"id": "Kolkata", "name": "Kolkata", "has_metro": true, "metro_lines": 2},
		{"id": "kolkata", "name": "Duplicate"},
		{"id": "", "name": "No id"},
		{"id": "pune", "name": "Pune"}
	]}`

	cities, err := ParseCities(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "kolkata", cities[0].ID)
	assert.Equal(t, 2, cities[0].MetroLines)
	assert.Equal(t, "pune", cities[1].ID)

	_, err = ParseCities(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestCleanStations(t *testing.T) {
	stations := []models.Station{
		{ID: "esplanade", Name: "Esplanade", Lat: 22.5646, Lng: 88.3516, Lines: []string{"Blue", " GREEN ", ""}},
		{ID: "esplanade", Name: "Duplicate", Lat: 22.56, Lng: 88.35},
		{ID: "null-island", Name: "Null Island", Lat: 0, Lng: 0},
		{ID: "bad-lat", Name: "Bad", Lat: 95, Lng: 88},
		{ID: "", Name: "No id", Lat: 22.5, Lng: 88.3},
	}

	cleaned := CleanStations("kolkata", stations)
	require.Len(t, cleaned, 1)
	assert.Equal(t, []string{"blue", "green"}, cleaned[0].Lines)
}

func TestCleanBusRoutes(t *testing.T) {
	routes := []models.BusRoute{
		{BusNumber: " S-9A ", Stops: []string{" Howrah ", "", "Esplanade"}, Type: "AC"},
		{BusNumber: "s-9a", Stops: []string{"A", "B"}},
		{BusNumber: "1", Stops: []string{"Only"}},
		{BusNumber: "", Stops: []string{"A", "B"}},
		{BusNumber: "AC-2", Stops: []string{"A", "B", "C"}, Type: models.BusAC, StartPoint: "Origin"},
	}

	cleaned := CleanBusRoutes("kolkata", routes)
	require.Len(t, cleaned, 2)

	assert.Equal(t, "S-9A", cleaned[0].BusNumber)
	assert.Equal(t, []string{"Howrah", "Esplanade"}, cleaned[0].Stops)
	assert.Equal(t, models.BusRegular, cleaned[0].Type) // only lower-case "ac" is AC
	assert.Equal(t, "Howrah", cleaned[0].StartPoint)
	assert.Equal(t, "Esplanade", cleaned[0].EndPoint)

	assert.Equal(t, models.BusAC, cleaned[1].Type)
	assert.Equal(t, "Origin", cleaned[1].StartPoint)
	assert.Equal(t, "C", cleaned[1].EndPoint)
}

func TestCleanPlaces(t *testing.T) {
	places := []models.Place{
		{ID: "victoria", Name: "Victoria Memorial", Category: models.CategoryHistorical, Lat: 22.5448, Lng: 88.3426},
		{ID: "mall", Name: "Mall", Category: "shopping", Lat: 22.5, Lng: 88.3},
		{ID: "nowhere", Name: "Nowhere", Category: models.CategoryNature},
		{ID: "victoria", Name: "Again", Category: models.CategoryHistorical, Lat: 22.5, Lng: 88.3},
	}

	cleaned := CleanPlaces("kolkata", places)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "victoria", cleaned[0].ID)
}

func TestFindStationExactIDIgnoresCase(t *testing.T) {
	store := NewStore(
		[]models.City{{ID: "testville", Name: "Testville"}},
		map[string][]models.Station{
			"testville": {
				{ID: "central-park", Name: "Central Park", Lat: 10, Lng: 10},
				{ID: "CENTRAL", Name: "Chandni", Lat: 10.1, Lng: 10.1},
			},
		},
		nil, nil,
	)

	st, ok := store.FindStation("testville", "central")
	require.True(t, ok)
	assert.Equal(t, "CENTRAL", st.ID)

	st, ok = store.FindStation("testville", "CENTRAL PARK")
	require.True(t, ok)
	assert.Equal(t, "central-park", st.ID)
}

func TestCityBatchPrunesRemovedCities(t *testing.T) {
	batch := cityBatch([]models.City{{ID: "kolkata", Name: "Kolkata"}, {ID: "delhi", Name: "Delhi"}})
	require.Equal(t, 3, batch.Len())

	prune := batch.QueuedQueries[2]
	assert.Contains(t, prune.SQL, "DELETE FROM city")
	assert.Contains(t, prune.SQL, "NOT (id = ANY($1))")
	assert.Equal(t, []any{[]string{"kolkata", "delhi"}}, prune.Arguments)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"data/cities.json":   {Data: []byte(`{"cities":[{"id":"testville","name":"Testville"}]}`)},
		"data/stations.json": {Data: []byte(`{"Testville":[{"id":"a","name":"A","lat":10,"lng":10,"lines":["red"]}]}`)},
		"data/buses.json":    {Data: []byte(`{}`)},
		"data/places.json":   {Data: []byte(`{}`)},
	}

	store, err := LoadFS(fsys, "data")
	require.NoError(t, err)
	assert.True(t, store.HasTransit("testville"))
	assert.Empty(t, store.BusRoutes("testville"))

	_, err = LoadFS(fstest.MapFS{}, "data")
	assert.Error(t, err)
}

func TestLoadEmbedded(t *testing.T) {
	store, err := LoadEmbedded()
	require.NoError(t, err)

	t.Run("Cities", func(t *testing.T) {
		assert.Len(t, store.Cities(), 12)
		assert.Equal(t, "kolkata", store.Cities()[0].ID)

		city, ok := store.City("KOLKATA")
		require.True(t, ok)
		assert.Equal(t, "The City of Joy", city.Tagline)

		city, ok = store.CityByName("new delhi")
		assert.False(t, ok)
		city, ok = store.CityByName("delhi")
		require.True(t, ok)
		assert.Equal(t, "delhi", city.ID)

		_, ok = store.City("atlantis")
		assert.False(t, ok)
	})

	t.Run("Transit only in Kolkata", func(t *testing.T) {
		assert.True(t, store.HasTransit("kolkata"))
		assert.False(t, store.HasTransit("delhi"))
		assert.NotNil(t, store.Stations("delhi"))
		assert.Empty(t, store.BusRoutes("delhi"))
	})

	t.Run("Esplanade is the interchange", func(t *testing.T) {
		st, ok := store.Station("kolkata", "esplanade")
		require.True(t, ok)
		assert.ElementsMatch(t, []string{"blue", "green"}, st.Lines)
	})

	t.Run("Find station", func(t *testing.T) {
		st, ok := store.FindStation("kolkata", "Park Street")
		require.True(t, ok)
		assert.Equal(t, "park-street", st.ID)

		st, ok = store.FindStation("kolkata", "central")
		require.True(t, ok)
		assert.Equal(t, "central", st.ID) // exact beats Central Park

		st, ok = store.FindStation("kolkata", "sector")
		require.True(t, ok)
		assert.Equal(t, "salt-lake-sector-v", st.ID)

		_, ok = store.FindStation("kolkata", "")
		assert.False(t, ok)
		_, ok = store.FindStation("kolkata", "atlantis")
		assert.False(t, ok)
	})

	t.Run("Search stations", func(t *testing.T) {
		assert.Len(t, store.SearchStations("kolkata", ""), len(store.Stations("kolkata")))
		matches := store.SearchStations("kolkata", "kavi")
		assert.Len(t, matches, 2)
	})

	t.Run("Places", func(t *testing.T) {
		places := store.CuratedPlaces("kolkata")
		assert.Len(t, places, 15)

		counts := map[models.Category]int{}
		for _, p := range places {
			counts[p.Category]++
		}
		for _, c := range models.AllCategories() {
			assert.Equal(t, 3, counts[c], c)
		}

		p, ok := store.Place("kolkata", "howrah-bridge")
		require.True(t, ok)
		assert.Equal(t, models.CategoryHistorical, p.Category)

		for _, city := range []string{"delhi", "mumbai", "jaipur"} {
			curated := store.CuratedPlaces(city)
			assert.NotEmpty(t, curated, city)
			for _, p := range curated {
				assert.NotEmpty(t, p.ImageQuery, p.ID)
			}
		}
		assert.Empty(t, store.CuratedPlaces("nagpur"))
	})

	t.Run("Counts", func(t *testing.T) {
		counts := store.Counts()
		assert.Equal(t, 12, counts["cities"])
		assert.Equal(t, len(store.Stations("kolkata")), counts["stations"])
		assert.Equal(t, len(store.BusRoutes("kolkata")), counts["bus_routes"])
	})

	t.Run("Fixtures drive the planners", func(t *testing.T) {
		from, _ := store.FindStation("kolkata", "Park Street")
		to, _ := store.FindStation("kolkata", "Esplanade")
		routes := routing.NewPlanner().FindRoutes(from, to)
		require.NotEmpty(t, routes)
		assert.Equal(t, 0, routes[0].Interchanges)

		matches := busmatch.NewMatcher(store.BusRoutes("kolkata")).FindRoutes("Howrah", "Esplanade")
		assert.NotEmpty(t, matches)
	})
}
