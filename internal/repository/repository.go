package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sensorgrid/telemetry/internal/domain"
)

const readingColumns = `id, tenant_id, device_id, type, value, unit, battery, signal, recorded_at, external_id, created_at, battery_low`

type Repos struct {
	db               *sqlx.DB
	defaultThreshold int
}

func New(db *sqlx.DB, defaultThreshold int) *Repos {
	return &Repos{db: db, defaultThreshold: defaultThreshold}
}

// InsertReading persists an enriched reading and returns its assigned id.
// A violation of UNIQUE(tenant_id, external_id) comes back as
// domain.DuplicateError; the constraint, not the caller's pre-check, is the
// final authority on idempotency.
func (r *Repos) InsertReading(ctx context.Context, rd *domain.TelemetryReading) (int64, error) {
	query := r.db.Rebind(`INSERT INTO telemetry_readings
		(tenant_id, device_id, type, value, unit, battery, signal, recorded_at, external_id, created_at, battery_low)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	// timestamps go in as UTC: the sqlite driver stores them as text, and an
	// offset-bearing value would sort by the literal string
	args := []any{rd.TenantID, rd.DeviceID, rd.Type, rd.Value, rd.Unit, rd.Battery, rd.Signal,
		rd.RecordedAt.UTC(), rd.ExternalID, rd.CreatedAt.UTC(), rd.BatteryLow}

	var id int64
	var err error
	if r.db.DriverName() == "sqlite" {
		var res sql.Result
		res, err = r.db.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = res.LastInsertId()
		}
	} else {
		err = r.db.GetContext(ctx, &id, query+" RETURNING id", args...)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &domain.DuplicateError{TenantID: rd.TenantID, ExternalID: rd.ExternalID}
		}
		return 0, &domain.StorageError{Op: "insert reading", Err: err}
	}
	return id, nil
}

// ExistsByTenantAndExternalID reports whether the idempotency key is taken.
func (r *Repos) ExistsByTenantAndExternalID(ctx context.Context, tenantID, externalID string) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(1) FROM telemetry_readings WHERE tenant_id = ? AND external_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, tenantID, externalID); err != nil {
		return false, &domain.StorageError{Op: "exists check", Err: err}
	}
	return count > 0, nil
}

// FindByID returns (nil, nil) when no reading has the id; absence is not an
// error at this layer.
func (r *Repos) FindByID(ctx context.Context, id int64) (*domain.TelemetryReading, error) {
	var rd domain.TelemetryReading
	query := r.db.Rebind(`SELECT ` + readingColumns + ` FROM telemetry_readings WHERE id = ?`)
	err := r.db.GetContext(ctx, &rd, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "find by id", Err: err}
	}
	return &rd, nil
}

// FindFiltered returns one page of matching readings ordered by recorded_at
// descending. Negative offset/limit are clamped so both drivers behave alike.
func (r *Repos) FindFiltered(ctx context.Context, f domain.ReadingFilter, offset, limit int) ([]domain.TelemetryReading, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	where, args := filterClause(f)
	query := r.db.Rebind(`SELECT ` + readingColumns + ` FROM telemetry_readings WHERE 1=1` + where +
		` ORDER BY recorded_at DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	out := []domain.TelemetryReading{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, &domain.StorageError{Op: "query readings", Err: err}
	}
	return out, nil
}

// CountFiltered counts matches ignoring pagination, using the same predicate
// clause as FindFiltered so the two can never drift.
func (r *Repos) CountFiltered(ctx context.Context, f domain.ReadingFilter) (int, error) {
	where, args := filterClause(f)
	query := r.db.Rebind(`SELECT COUNT(*) FROM telemetry_readings WHERE 1=1` + where)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, &domain.StorageError{Op: "count readings", Err: err}
	}
	return count, nil
}

// GetDeviceBatteryThreshold looks up the registry threshold for a device,
// falling back to the configured default for unknown devices.
func (r *Repos) GetDeviceBatteryThreshold(ctx context.Context, deviceID string) (int, error) {
	var threshold int
	query := r.db.Rebind(`SELECT battery_low_threshold FROM devices WHERE device_id = ?`)
	err := r.db.GetContext(ctx, &threshold, query, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaultThreshold, nil
	}
	if err != nil {
		return 0, &domain.StorageError{Op: "device threshold", Err: err}
	}
	return threshold, nil
}

func filterClause(f domain.ReadingFilter) (string, []any) {
	var where string
	var args []any
	if f.DeviceID != "" {
		where += " AND device_id = ?"
		args = append(args, f.DeviceID)
	}
	if f.Type != "" {
		where += " AND type = ?"
		args = append(args, f.Type)
	}
	if f.Start != nil {
		where += " AND recorded_at >= ?"
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		where += " AND recorded_at <= ?"
		args = append(args, f.End.UTC())
	}
	return where, args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
