package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/sensorgrid/telemetry/internal/domain"
	"github.com/sensorgrid/telemetry/internal/repository"
	"github.com/sensorgrid/telemetry/internal/validate"
)

// ReadingStore is what the engine needs from its backing store. Any backend
// works as long as the (tenant_id, external_id) uniqueness invariant and the
// recorded_at ordering contract hold.
type ReadingStore interface {
	InsertReading(ctx context.Context, rd *domain.TelemetryReading) (int64, error)
	ExistsByTenantAndExternalID(ctx context.Context, tenantID, externalID string) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.TelemetryReading, error)
	FindFiltered(ctx context.Context, f domain.ReadingFilter, offset, limit int) ([]domain.TelemetryReading, error)
	CountFiltered(ctx context.Context, f domain.ReadingFilter) (int, error)
	GetDeviceBatteryThreshold(ctx context.Context, deviceID string) (int, error)
}

// Clock supplies the engine's notion of now, for createdAt stamping and the
// future-recordedAt rule.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type Services struct {
	Repos     *repository.Repos
	Telemetry *TelemetryService
}

func New(db *sqlx.DB, defaultThreshold int) *Services {
	repos := repository.New(db, defaultThreshold)
	return &Services{
		Repos:     repos,
		Telemetry: NewTelemetryService(repos, systemClock{}),
	}
}

type TelemetryService struct {
	store     ReadingStore
	clock     Clock
	validator *validate.Validator
}

func NewTelemetryService(store ReadingStore, clock Clock) *TelemetryService {
	return &TelemetryService{
		store:     store,
		clock:     clock,
		validator: validate.New(clock.Now),
	}
}

// Ingest accepts one reading: validate, reject duplicates, flag low battery
// against the device's registry threshold, stamp createdAt, persist. The
// returned reading carries the store-assigned id.
//
// The duplicate pre-check is only a fast path; a concurrent insert of the same
// (tenantId, externalId) slips past it and surfaces as a store uniqueness
// violation, which is reported as the same DuplicateError.
func (s *TelemetryService) Ingest(ctx context.Context, rd *domain.TelemetryReading) (*domain.TelemetryReading, error) {
	if violations := s.validator.Validate(rd); len(violations) > 0 {
		log.Info().
			Str("tenant_id", rd.TenantID).
			Str("device_id", rd.DeviceID).
			Strs("violations", violations).
			Msg("telemetry rejected: invalid payload")
		return nil, &domain.ValidationError{Violations: violations}
	}

	exists, err := s.store.ExistsByTenantAndExternalID(ctx, rd.TenantID, rd.ExternalID)
	if err != nil {
		return nil, s.storageFailure(rd, "duplicate check", err)
	}
	if exists {
		log.Warn().
			Str("tenant_id", rd.TenantID).
			Str("external_id", rd.ExternalID).
			Msg("telemetry rejected: duplicate externalId")
		return nil, &domain.DuplicateError{TenantID: rd.TenantID, ExternalID: rd.ExternalID}
	}

	threshold, err := s.store.GetDeviceBatteryThreshold(ctx, rd.DeviceID)
	if err != nil {
		return nil, s.storageFailure(rd, "threshold lookup", err)
	}
	rd.BatteryLow = rd.Battery < threshold
	// normalize to UTC so the store's recorded_at ordering compares instants,
	// not offset-bearing text
	rd.RecordedAt = rd.RecordedAt.UTC()
	rd.CreatedAt = s.clock.Now()

	id, err := s.store.InsertReading(ctx, rd)
	if err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			// lost the check-then-insert race; the constraint is the authority
			log.Warn().
				Str("tenant_id", rd.TenantID).
				Str("external_id", rd.ExternalID).
				Msg("telemetry rejected: duplicate externalId on insert")
			return nil, dup
		}
		return nil, s.storageFailure(rd, "insert", err)
	}
	rd.ID = id

	log.Info().
		Int64("id", rd.ID).
		Str("tenant_id", rd.TenantID).
		Str("device_id", rd.DeviceID).
		Str("type", rd.Type).
		Bool("battery_low", rd.BatteryLow).
		Msg("telemetry ingested")

	return rd, nil
}

// GetByID returns (nil, nil) when no reading has the id.
func (s *TelemetryService) GetByID(ctx context.Context, id int64) (*domain.TelemetryReading, error) {
	rd, err := s.store.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("telemetry lookup failed")
		return nil, err
	}
	return rd, nil
}

// Query returns one page of readings matching the filter, newest recordedAt
// first, plus the total match count ignoring pagination. page is 1-based;
// pageSize 0 yields an empty page with a real total.
func (s *TelemetryService) Query(ctx context.Context, f domain.ReadingFilter, page, pageSize int) (*domain.QueryResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}

	data, err := s.store.FindFiltered(ctx, f, (page-1)*pageSize, pageSize)
	if err != nil {
		log.Error().Err(err).Str("device_id", f.DeviceID).Str("type", f.Type).Msg("telemetry query failed")
		return nil, err
	}
	total, err := s.store.CountFiltered(ctx, f)
	if err != nil {
		log.Error().Err(err).Str("device_id", f.DeviceID).Str("type", f.Type).Msg("telemetry count failed")
		return nil, err
	}

	return &domain.QueryResult{Data: data, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *TelemetryService) storageFailure(rd *domain.TelemetryReading, op string, err error) error {
	log.Error().Err(err).
		Str("tenant_id", rd.TenantID).
		Str("device_id", rd.DeviceID).
		Str("external_id", rd.ExternalID).
		Msg("telemetry ingest failed: " + op)
	var storeErr *domain.StorageError
	if errors.As(err, &storeErr) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
