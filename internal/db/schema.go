package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the reference data tables. Every statement is idempotent.
// The position columns keep fixture order, which itinerary selection depends on.
const Schema = `
CREATE TABLE IF NOT EXISTS city (
	id             TEXT PRIMARY KEY,
	position       INT NOT NULL,
	name           TEXT NOT NULL,
	state          TEXT NOT NULL DEFAULT '',
	tagline        TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	has_metro      BOOLEAN NOT NULL DEFAULT FALSE,
	metro_lines    INT NOT NULL DEFAULT 0,
	metro_stations INT NOT NULL DEFAULT 0,
	population     TEXT NOT NULL DEFAULT '',
	primary_color  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS station (
	city_id  TEXT NOT NULL REFERENCES city(id) ON DELETE CASCADE,
	id       TEXT NOT NULL,
	position INT NOT NULL,
	name     TEXT NOT NULL,
	lat      DOUBLE PRECISION NOT NULL,
	lng      DOUBLE PRECISION NOT NULL,
	lines    TEXT[] NOT NULL DEFAULT '{}',
	PRIMARY KEY (city_id, id)
);

CREATE TABLE IF NOT EXISTS bus_route (
	city_id         TEXT NOT NULL REFERENCES city(id) ON DELETE CASCADE,
	bus_number      TEXT NOT NULL,
	position        INT NOT NULL,
	start_point     TEXT NOT NULL,
	end_point       TEXT NOT NULL,
	stops           TEXT[] NOT NULL,
	frequency       TEXT NOT NULL DEFAULT '',
	operating_hours TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL DEFAULT 'regular',
	PRIMARY KEY (city_id, bus_number)
);

CREATE TABLE IF NOT EXISTS place (
	city_id        TEXT NOT NULL REFERENCES city(id) ON DELETE CASCADE,
	id             TEXT NOT NULL,
	position       INT NOT NULL,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	lat            DOUBLE PRECISION NOT NULL,
	lng            DOUBLE PRECISION NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	best_time      TEXT NOT NULL DEFAULT '',
	entry_fee      TEXT NOT NULL DEFAULT '',
	nearby_station TEXT NOT NULL DEFAULT '',
	image          TEXT NOT NULL DEFAULT '',
	image_query    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (city_id, id)
);

CREATE INDEX IF NOT EXISTS idx_place_category ON place (city_id, category);

CREATE TABLE IF NOT EXISTS import_log (
	id           BIGSERIAL PRIMARY KEY,
	source       TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ,
	status       TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT ''
);
`

// Migrate applies Schema
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
