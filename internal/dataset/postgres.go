package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/welcometomycity/citycore/internal/models"
	"go.uber.org/zap"
)

// SeedStats counts rows written by Seed
type SeedStats struct {
	Cities    int
	Stations  int
	BusRoutes int
	Places    int
}

func (s SeedStats) String() string {
	return fmt.Sprintf("%d cities, %d stations, %d bus routes, %d places",
		s.Cities, s.Stations, s.BusRoutes, s.Places)
}

// LoadFromDB builds a store from the reference tables. Rows are cleaned the
// same way as fixtures.
func LoadFromDB(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	startTime := time.Now()

	cities, err := loadCities(ctx, pool)
	if err != nil {
		return nil, err
	}

	stations, err := loadStations(ctx, pool)
	if err != nil {
		return nil, err
	}

	buses, err := loadBusRoutes(ctx, pool)
	if err != nil {
		return nil, err
	}

	places, err := loadPlaces(ctx, pool)
	if err != nil {
		return nil, err
	}

	store := NewStore(CleanCities(cities), stations, buses, places)
	zap.L().Info("dataset loaded from database",
		zap.Duration("took", time.Since(startTime)),
		zap.Any("counts", store.Counts()))

	return store, nil
}

func loadCities(ctx context.Context, pool *pgxpool.Pool) ([]models.City, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, name, state, tagline, description, has_metro,
		       metro_lines, metro_stations, population, primary_color
		FROM city
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}
	defer rows.Close()

	cities := []models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.State, &c.Tagline, &c.Description, &c.HasMetro,
			&c.MetroLines, &c.MetroStations, &c.Population, &c.PrimaryColor); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}

func loadStations(ctx context.Context, pool *pgxpool.Pool) (map[string][]models.Station, error) {
	rows, err := pool.Query(ctx, `
		SELECT city_id, id, name, lat, lng, lines
		FROM station
		ORDER BY city_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]models.Station)
	for rows.Next() {
		var cityID string
		var s models.Station
		if err := rows.Scan(&cityID, &s.ID, &s.Name, &s.Lat, &s.Lng, &s.Lines); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		raw[cityID] = append(raw[cityID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.Station, len(raw))
	for city, stations := range raw {
		out[city] = CleanStations(city, stations)
	}
	return out, nil
}

func loadBusRoutes(ctx context.Context, pool *pgxpool.Pool) (map[string][]models.BusRoute, error) {
	rows, err := pool.Query(ctx, `
		SELECT city_id, bus_number, start_point, end_point, stops,
		       frequency, operating_hours, type
		FROM bus_route
		ORDER BY city_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load bus routes: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]models.BusRoute)
	for rows.Next() {
		var cityID, busType string
		var r models.BusRoute
		if err := rows.Scan(&cityID, &r.BusNumber, &r.StartPoint, &r.EndPoint, &r.Stops,
			&r.Frequency, &r.OperatingHours, &busType); err != nil {
			return nil, fmt.Errorf("failed to scan bus route: %w", err)
		}
		r.Type = models.BusType(busType)
		raw[cityID] = append(raw[cityID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.BusRoute, len(raw))
	for city, routes := range raw {
		out[city] = CleanBusRoutes(city, routes)
	}
	return out, nil
}

func loadPlaces(ctx context.Context, pool *pgxpool.Pool) (map[string][]models.Place, error) {
	rows, err := pool.Query(ctx, `
		SELECT city_id, id, name, category, lat, lng, description,
		       best_time, entry_fee, nearby_station, image, image_query
		FROM place
		ORDER BY city_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load places: %w", err)
	}
	defer rows.Close()

	raw := make(map[string][]models.Place)
	for rows.Next() {
		var cityID, category string
		var p models.Place
		if err := rows.Scan(&cityID, &p.ID, &p.Name, &category, &p.Lat, &p.Lng, &p.Description,
			&p.BestTime, &p.EntryFee, &p.NearbyStation, &p.Image, &p.ImageQuery); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		p.Category = models.Category(category)
		raw[cityID] = append(raw[cityID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.Place, len(raw))
	for city, places := range raw {
		out[city] = CleanPlaces(city, places)
	}
	return out, nil
}

// Seed writes the store into the reference tables in a single transaction.
// Existing rows are updated and rows no longer in the store are removed.
// Each run is recorded in import_log.
func Seed(ctx context.Context, pool *pgxpool.Pool, store *Store, source string) (SeedStats, error) {
	var stats SeedStats

	logID, err := createImportLog(ctx, pool, source)
	if err != nil {
		return stats, fmt.Errorf("failed to create import log: %w", err)
	}

	stats, err = seedTx(ctx, pool, store)
	if err != nil {
		if logErr := updateImportLog(ctx, pool, logID, "failed", err.Error()); logErr != nil {
			zap.L().Warn("failed to update import log", zap.Error(logErr))
		}
		return stats, err
	}

	if err := updateImportLog(ctx, pool, logID, "success", stats.String()); err != nil {
		zap.L().Warn("failed to update import log", zap.Error(err))
	}

	return stats, nil
}

func seedTx(ctx context.Context, pool *pgxpool.Pool, store *Store) (SeedStats, error) {
	var stats SeedStats

	tx, err := pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if stats.Cities, err = seedCities(ctx, tx, store.Cities()); err != nil {
		return stats, err
	}

	for _, city := range store.Cities() {
		n, err := seedStations(ctx, tx, city.ID, store.Stations(city.ID))
		if err != nil {
			return stats, err
		}
		stats.Stations += n

		n, err = seedBusRoutes(ctx, tx, city.ID, store.BusRoutes(city.ID))
		if err != nil {
			return stats, err
		}
		stats.BusRoutes += n

		n, err = seedPlaces(ctx, tx, city.ID, store.CuratedPlaces(city.ID))
		if err != nil {
			return stats, err
		}
		stats.Places += n
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("dataset seeded", zap.Stringer("stats", stats))
	return stats, nil
}

// sendBatch executes every queued statement and closes the results
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, what string) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to write %s %d: %w", what, i, err)
		}
	}
	return nil
}

func seedCities(ctx context.Context, tx pgx.Tx, cities []models.City) (int, error) {
	return len(cities), sendBatch(ctx, tx, cityBatch(cities), "city")
}

// cityBatch upserts cities and removes those no longer listed
func cityBatch(cities []models.City) *pgx.Batch {
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(cities))

	for i, c := range cities {
		ids = append(ids, c.ID)
		batch.Queue(`
			INSERT INTO city (id, position, name, state, tagline, description, has_metro,
			                  metro_lines, metro_stations, population, primary_color)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE
			SET position = EXCLUDED.position,
			    name = EXCLUDED.name,
			    state = EXCLUDED.state,
			    tagline = EXCLUDED.tagline,
			    description = EXCLUDED.description,
			    has_metro = EXCLUDED.has_metro,
			    metro_lines = EXCLUDED.metro_lines,
			    metro_stations = EXCLUDED.metro_stations,
			    population = EXCLUDED.population,
			    primary_color = EXCLUDED.primary_color
		`, c.ID, i, c.Name, c.State, c.Tagline, c.Description, c.HasMetro,
			c.MetroLines, c.MetroStations, c.Population, c.PrimaryColor)
	}
	// Stations, routes and places of removed cities go with them
	batch.Queue(`DELETE FROM city WHERE NOT (id = ANY($1))`, ids)

	return batch
}

func seedStations(ctx context.Context, tx pgx.Tx, cityID string, stations []models.Station) (int, error) {
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(stations))

	for i, s := range stations {
		ids = append(ids, s.ID)
		batch.Queue(`
			INSERT INTO station (city_id, id, position, name, lat, lng, lines)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (city_id, id) DO UPDATE
			SET position = EXCLUDED.position,
			    name = EXCLUDED.name,
			    lat = EXCLUDED.lat,
			    lng = EXCLUDED.lng,
			    lines = EXCLUDED.lines
		`, cityID, s.ID, i, s.Name, s.Lat, s.Lng, s.Lines)
	}
	batch.Queue(`DELETE FROM station WHERE city_id = $1 AND NOT (id = ANY($2))`, cityID, ids)

	return len(stations), sendBatch(ctx, tx, batch, "station")
}

func seedBusRoutes(ctx context.Context, tx pgx.Tx, cityID string, routes []models.BusRoute) (int, error) {
	batch := &pgx.Batch{}
	numbers := make([]string, 0, len(routes))

	for i, r := range routes {
		numbers = append(numbers, r.BusNumber)
		batch.Queue(`
			INSERT INTO bus_route (city_id, bus_number, position, start_point, end_point,
			                       stops, frequency, operating_hours, type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (city_id, bus_number) DO UPDATE
			SET position = EXCLUDED.position,
			    start_point = EXCLUDED.start_point,
			    end_point = EXCLUDED.end_point,
			    stops = EXCLUDED.stops,
			    frequency = EXCLUDED.frequency,
			    operating_hours = EXCLUDED.operating_hours,
			    type = EXCLUDED.type
		`, cityID, r.BusNumber, i, r.StartPoint, r.EndPoint, r.Stops,
			r.Frequency, r.OperatingHours, string(r.Type))
	}
	batch.Queue(`DELETE FROM bus_route WHERE city_id = $1 AND NOT (bus_number = ANY($2))`, cityID, numbers)

	return len(routes), sendBatch(ctx, tx, batch, "bus route")
}

func seedPlaces(ctx context.Context, tx pgx.Tx, cityID string, places []models.Place) (int, error) {
	batch := &pgx.Batch{}
	ids := make([]string, 0, len(places))

	for i, p := range places {
		ids = append(ids, p.ID)
		batch.Queue(`
			INSERT INTO place (city_id, id, position, name, category, lat, lng, description,
			                   best_time, entry_fee, nearby_station, image, image_query)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (city_id, id) DO UPDATE
			SET position = EXCLUDED.position,
			    name = EXCLUDED.name,
			    category = EXCLUDED.category,
			    lat = EXCLUDED.lat,
			    lng = EXCLUDED.lng,
			    description = EXCLUDED.description,
			    best_time = EXCLUDED.best_time,
			    entry_fee = EXCLUDED.entry_fee,
			    nearby_station = EXCLUDED.nearby_station,
			    image = EXCLUDED.image,
			    image_query = EXCLUDED.image_query
		`, cityID, p.ID, i, p.Name, string(p.Category), p.Lat, p.Lng, p.Description,
			p.BestTime, p.EntryFee, p.NearbyStation, p.Image, p.ImageQuery)
	}
	batch.Queue(`DELETE FROM place WHERE city_id = $1 AND NOT (id = ANY($2))`, cityID, ids)

	return len(places), sendBatch(ctx, tx, batch, "place")
}

func createImportLog(ctx context.Context, pool *pgxpool.Pool, source string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO import_log (source, status)
		VALUES ($1, 'running')
		RETURNING id
	`, source).Scan(&id)

	return id, err
}

func updateImportLog(ctx context.Context, pool *pgxpool.Pool, id int64, status, message string) error {
	_, err := pool.Exec(ctx, `
		UPDATE import_log
		SET completed_at = NOW(),
		    status = $2,
		    message = $3
		WHERE id = $1
	`, id, status, message)

	return err
}
