package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"logistics-service/internal/platform/db"
)

// Column types differ per dialect; statements below use these tokens.
var dialectTypes = map[db.Dialect]*strings.Replacer{
	db.SQLite: strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{fk}}", "INTEGER",
		"{{int}}", "INTEGER",
		"{{real}}", "REAL",
		"{{bool}}", "INTEGER",
		"{{true}}", "1",
		"{{false}}", "0",
		"{{date}}", "TEXT",
		"{{timestamp}}", "TEXT",
	),
	db.Postgres: strings.NewReplacer(
		"{{pk}}", "BIGSERIAL PRIMARY KEY",
		"{{fk}}", "BIGINT",
		"{{int}}", "BIGINT",
		"{{real}}", "DOUBLE PRECISION",
		"{{bool}}", "BOOLEAN",
		"{{true}}", "TRUE",
		"{{false}}", "FALSE",
		"{{date}}", "DATE",
		"{{timestamp}}", "TIMESTAMPTZ",
	),
}

var schemaStatements = []string{
	`
	CREATE TABLE IF NOT EXISTS routes (
		id {{pk}},
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		transport_type TEXT NOT NULL DEFAULT 'GROUND' CHECK (transport_type IN ('GROUND', 'AIR')),
		distance_km {{real}} CHECK (distance_km >= 0)
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS vehicles (
		id {{pk}},
		plate_number TEXT NOT NULL UNIQUE,
		vehicle_type TEXT NOT NULL,
		capacity_kg {{int}} NOT NULL CHECK (capacity_kg >= 0),
		active {{bool}} NOT NULL DEFAULT {{true}}
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS aircraft (
		id {{pk}},
		registration_number TEXT NOT NULL UNIQUE,
		aircraft_type TEXT NOT NULL,
		capacity_kg {{int}} NOT NULL CHECK (capacity_kg >= 0),
		active {{bool}} NOT NULL DEFAULT {{true}}
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS drivers (
		id {{pk}},
		full_name TEXT NOT NULL,
		national_id TEXT NOT NULL UNIQUE,
		license_number TEXT NOT NULL,
		active {{bool}} NOT NULL DEFAULT {{true}}
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS pilots (
		id {{pk}},
		full_name TEXT NOT NULL,
		national_id TEXT NOT NULL UNIQUE,
		certification TEXT NOT NULL,
		active {{bool}} NOT NULL DEFAULT {{true}}
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS clients (
		id {{pk}},
		name TEXT NOT NULL,
		national_id TEXT NOT NULL UNIQUE,
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT ''
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS cargo (
		id {{pk}},
		description TEXT NOT NULL DEFAULT '',
		weight_kg {{real}} NOT NULL CHECK (weight_kg >= 0),
		volume_m3 {{real}} CHECK (volume_m3 >= 0),
		client_id {{fk}} REFERENCES clients(id) ON DELETE SET NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS dispatches (
		id {{pk}},
		dispatch_date {{date}} NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		shipping_cost {{real}} CHECK (shipping_cost >= 0),
		route_id {{fk}} NOT NULL REFERENCES routes(id),
		cargo_id {{fk}} NOT NULL REFERENCES cargo(id),
		vehicle_id {{fk}} REFERENCES vehicles(id),
		aircraft_id {{fk}} REFERENCES aircraft(id),
		driver_id {{fk}} REFERENCES drivers(id),
		pilot_id {{fk}} REFERENCES pilots(id),
		needs_reassignment {{bool}} NOT NULL DEFAULT {{false}}
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS users (
		id {{pk}},
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_staff {{bool}} NOT NULL DEFAULT {{false}},
		created_at {{timestamp}} NOT NULL
	);
	`,
	`CREATE INDEX IF NOT EXISTS idx_dispatches_date ON dispatches(dispatch_date);`,
	`CREATE INDEX IF NOT EXISTS idx_dispatches_reassignment ON dispatches(needs_reassignment, status);`,
	`CREATE INDEX IF NOT EXISTS idx_cargo_client ON cargo(client_id);`,
}

// InitSchema creates every table and index if missing. It is idempotent.
func InitSchema(ctx context.Context, conn *db.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}
	types := dialectTypes[conn.Dialect]

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
