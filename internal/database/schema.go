package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL UNIQUE,
		tenant_id TEXT NOT NULL,
		name TEXT,
		device_type TEXT,
		battery_low_threshold INTEGER NOT NULL DEFAULT 20,
		created_at TIMESTAMP NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);`,
	`CREATE TABLE IF NOT EXISTS telemetry_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		device_id TEXT NOT NULL,
		type TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		battery INTEGER NOT NULL,
		signal INTEGER NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		external_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		battery_low INTEGER NOT NULL,
		UNIQUE(tenant_id, external_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_device_id ON telemetry_readings(device_id);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_type ON telemetry_readings(type);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_recorded_at ON telemetry_readings(recorded_at);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_tenant_external ON telemetry_readings(tenant_id, external_id);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_tenant_id ON telemetry_readings(tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_devices_tenant_id ON devices(tenant_id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id BIGSERIAL PRIMARY KEY,
		tenant_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS devices (
		id BIGSERIAL PRIMARY KEY,
		device_id TEXT NOT NULL UNIQUE,
		tenant_id TEXT NOT NULL,
		name TEXT,
		device_type TEXT,
		battery_low_threshold INTEGER NOT NULL DEFAULT 20,
		created_at TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS telemetry_readings (
		id BIGSERIAL PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		device_id TEXT NOT NULL,
		type TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		battery INTEGER NOT NULL,
		signal INTEGER NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		external_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		battery_low BOOLEAN NOT NULL,
		UNIQUE(tenant_id, external_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_device_id ON telemetry_readings(device_id);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_type ON telemetry_readings(type);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_recorded_at ON telemetry_readings(recorded_at);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_tenant_external ON telemetry_readings(tenant_id, external_id);`,
	`CREATE INDEX IF NOT EXISTS idx_telemetry_tenant_id ON telemetry_readings(tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_devices_tenant_id ON devices(tenant_id);`,
}

// InitSchema ensures baseline tables and indexes exist. Safe to run on every
// startup.
func InitSchema(ctx context.Context, db *sqlx.DB, driver string) error {
	var stmts []string
	switch driver {
	case "sqlite":
		stmts = sqliteSchema
	case "pgx":
		stmts = postgresSchema
	default:
		return fmt.Errorf("unknown db driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
