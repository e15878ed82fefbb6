// Package validate performs structural validation of telemetry payloads.
// It is pure: the only ambient input is the injected clock, used for the
// future-timestamp rule.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sensorgrid/telemetry/internal/domain"
)

type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New(now func() time.Time) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v, now: now}
}

// Validate returns one human-readable message per violated rule, or nil when
// the reading is structurally valid. All violations are collected, not just
// the first.
func (v *Validator) Validate(r *domain.TelemetryReading) []string {
	var msgs []string

	if err := v.v.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				msgs = append(msgs, message(fe))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
	}

	// recordedAt == now is allowed; only strictly future timestamps fail.
	if !r.RecordedAt.IsZero() && r.RecordedAt.After(v.now()) {
		msgs = append(msgs, "recordedAt cannot be in the future")
	}

	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "battery":
		return "battery must be between 0 and 100"
	case "signal":
		return "signal must be 0 or negative (dBm)"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
