package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sensorgrid/telemetry/internal/domain"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return New(func() time.Time { return testNow })
}

func validReading() domain.TelemetryReading {
	return domain.TelemetryReading{
		TenantID:   "acme",
		DeviceID:   "dev-123",
		Type:       "water_level",
		Value:      3.7,
		Unit:       "m",
		Battery:    80,
		Signal:     -70,
		RecordedAt: testNow.Add(-time.Hour),
		ExternalID: "r-1",
	}
}

func TestValidReadingHasNoViolations(t *testing.T) {
	v := newTestValidator()
	rd := validReading()
	assert.Empty(t, v.Validate(&rd))
}

func TestAllViolationsAreCollected(t *testing.T) {
	v := newTestValidator()
	rd := validReading()
	rd.TenantID = ""
	rd.Battery = 101
	rd.Signal = 3
	rd.ExternalID = ""
	rd.RecordedAt = testNow.Add(time.Minute)

	msgs := v.Validate(&rd)
	assert.Len(t, msgs, 5)
	joined := strings.Join(msgs, "; ")
	assert.Contains(t, joined, "tenantId is required")
	assert.Contains(t, joined, "battery must be between 0 and 100")
	assert.Contains(t, joined, "signal must be 0 or negative (dBm)")
	assert.Contains(t, joined, "externalId is required")
	assert.Contains(t, joined, "recordedAt cannot be in the future")
}

func TestRequiredFields(t *testing.T) {
	cases := map[string]struct {
		mutate func(*domain.TelemetryReading)
		want   string
	}{
		"tenantId":   {func(r *domain.TelemetryReading) { r.TenantID = "" }, "tenantId is required"},
		"deviceId":   {func(r *domain.TelemetryReading) { r.DeviceID = "" }, "deviceId is required"},
		"type":       {func(r *domain.TelemetryReading) { r.Type = "" }, "type is required"},
		"unit":       {func(r *domain.TelemetryReading) { r.Unit = "" }, "unit is required"},
		"externalId": {func(r *domain.TelemetryReading) { r.ExternalID = "" }, "externalId is required"},
		"recordedAt": {func(r *domain.TelemetryReading) { r.RecordedAt = time.Time{} }, "recordedAt is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v := newTestValidator()
			rd := validReading()
			tc.mutate(&rd)
			msgs := v.Validate(&rd)
			assert.Equal(t, []string{tc.want}, msgs)
		})
	}
}

func TestLengthLimits(t *testing.T) {
	v := newTestValidator()
	rd := validReading()
	rd.TenantID = strings.Repeat("a", 101)
	rd.DeviceID = strings.Repeat("b", 101)
	rd.Type = strings.Repeat("c", 51)
	rd.Unit = strings.Repeat("d", 21)
	rd.ExternalID = strings.Repeat("e", 101)

	msgs := v.Validate(&rd)
	assert.Len(t, msgs, 5)
	assert.Contains(t, msgs, "tenantId must not exceed 100 characters")
	assert.Contains(t, msgs, "type must not exceed 50 characters")
	assert.Contains(t, msgs, "unit must not exceed 20 characters")
}

func TestBatteryBoundaries(t *testing.T) {
	v := newTestValidator()

	for _, battery := range []int{0, 100} {
		rd := validReading()
		rd.Battery = battery
		assert.Empty(t, v.Validate(&rd), "battery=%d must pass", battery)
	}
	for _, battery := range []int{-1, 101} {
		rd := validReading()
		rd.Battery = battery
		assert.Equal(t, []string{"battery must be between 0 and 100"}, v.Validate(&rd), "battery=%d must fail", battery)
	}
}

func TestSignalBoundary(t *testing.T) {
	v := newTestValidator()

	rd := validReading()
	rd.Signal = 0
	assert.Empty(t, v.Validate(&rd))

	rd.Signal = 1
	assert.Equal(t, []string{"signal must be 0 or negative (dBm)"}, v.Validate(&rd))
}

func TestRecordedAtNowIsInclusive(t *testing.T) {
	v := newTestValidator()

	rd := validReading()
	rd.RecordedAt = testNow
	assert.Empty(t, v.Validate(&rd))

	rd.RecordedAt = testNow.Add(time.Nanosecond)
	assert.Equal(t, []string{"recordedAt cannot be in the future"}, v.Validate(&rd))
}
