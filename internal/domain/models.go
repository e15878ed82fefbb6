package domain

import "time"

// TelemetryReading is a single sensor measurement reported by a device.
// ID, CreatedAt and BatteryLow are set during ingestion; callers supply the rest.
// Once stored a reading is never updated or deleted.
type TelemetryReading struct {
	ID         int64     `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenantId" validate:"required,max=100"`
	DeviceID   string    `db:"device_id" json:"deviceId" validate:"required,max=100"`
	Type       string    `db:"type" json:"type" validate:"required,max=50"`
	Value      float64   `db:"value" json:"value"`
	Unit       string    `db:"unit" json:"unit" validate:"required,max=20"`
	Battery    int       `db:"battery" json:"battery" validate:"min=0,max=100"`
	Signal     int       `db:"signal" json:"signal" validate:"max=0"`
	RecordedAt time.Time `db:"recorded_at" json:"recordedAt" validate:"required"`
	ExternalID string    `db:"external_id" json:"externalId" validate:"required,max=100"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	BatteryLow bool      `db:"battery_low" json:"batteryLow"`
}

// Device is a registry entry owned by device management; the engine only
// reads battery_low_threshold from it.
type Device struct {
	ID                  int64     `db:"id" json:"id"`
	DeviceID            string    `db:"device_id" json:"deviceId"`
	TenantID            string    `db:"tenant_id" json:"tenantId"`
	Name                string    `db:"name" json:"name"`
	DeviceType          string    `db:"device_type" json:"deviceType"`
	BatteryLowThreshold int       `db:"battery_low_threshold" json:"batteryLowThreshold"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	IsActive            bool      `db:"is_active" json:"isActive"`
}

// ReadingFilter is a conjunction of optional predicates over stored readings.
// A nil/empty field means the predicate is absent, not a wildcard match.
type ReadingFilter struct {
	DeviceID string
	Type     string
	Start    *time.Time
	End      *time.Time
}

// QueryResult is one page of readings plus the unpaginated match count.
type QueryResult struct {
	Data     []TelemetryReading `json:"data"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int                `json:"total"`
}
