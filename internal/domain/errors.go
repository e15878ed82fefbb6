package domain

import (
	"fmt"
	"strings"
)

// ValidationError carries every field rule the payload violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// DuplicateError reports that the (tenantId, externalId) idempotency key has
// already been used. Distinct from validation so it maps to a conflict, not a
// bad request.
type DuplicateError struct {
	TenantID   string
	ExternalID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate externalId %q for tenant %q", e.ExternalID, e.TenantID)
}

// StorageError wraps a store failure unrelated to the known uniqueness case.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
