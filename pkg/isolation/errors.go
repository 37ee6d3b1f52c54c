package isolation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrOwnership is the sentinel matched by OwnershipError via errors.Is.
	ErrOwnership = errors.New("isolation: entity does not belong to tenant")

	// ErrAccessDenied is the sentinel matched by AccessDeniedError.
	ErrAccessDenied = errors.New("isolation: tenant access denied")

	// ErrMissingContext is the sentinel matched by MissingContextError.
	ErrMissingContext = errors.New("isolation: tenant context missing")
)

// OwnershipError reports that one or more entities are not owned by the
// tenant performing the request. For single-entity checks EntityID is set;
// for bulk checks Missing counts how many of the requested ids were not
// found under the tenant.
type OwnershipError struct {
	Kind     Kind
	EntityID int64
	TenantID uuid.UUID
	Missing  int
}

func (e *OwnershipError) Error() string {
	if e.Missing > 1 {
		return fmt.Sprintf("%d %s entities do not belong to tenant %s", e.Missing, e.Kind, e.TenantID)
	}
	return fmt.Sprintf("%s %d does not belong to tenant %s", e.Kind, e.EntityID, e.TenantID)
}

func (e *OwnershipError) Unwrap() error { return ErrOwnership }

// CrossTenantError reports a request combining entities that are not tied
// together under the tenant, such as a school/product pair without a join
// row. Raised by consistency checks guarding parameter-confusion attacks.
type CrossTenantError struct {
	Operation  string
	ResourceID int64
	TenantID   uuid.UUID
}

func (e *CrossTenantError) Error() string {
	return fmt.Sprintf("cross-tenant access attempt in %s (resource %d, tenant %s)",
		e.Operation, e.ResourceID, e.TenantID)
}

func (e *CrossTenantError) Unwrap() error { return ErrAccessDenied }

// AccessDeniedError is the single consistent failure shape for composite
// operations: the boundary sees one "access denied" error instead of the
// lower-level ownership detail.
type AccessDeniedError struct {
	Operation string
	Reason    string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("tenant access denied for %s: %s", e.Operation, e.Reason)
}

func (e *AccessDeniedError) Unwrap() error { return ErrAccessDenied }

// MissingContextError reports that no tenant id could be derived from the
// request. Suggestion carries actionable guidance for the API consumer.
type MissingContextError struct {
	Suggestion string
}

func (e *MissingContextError) Error() string {
	return "tenant context missing: " + e.Suggestion
}

func (e *MissingContextError) Unwrap() error { return ErrMissingContext }

// UnknownKindError is a configuration error: a dynamic entity-type string
// the validator does not know. Deliberately distinct from OwnershipError so
// a typo in a caller is never reported as a tenant violation.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown entity kind %q", e.Name)
}

// LimitExceededError reports a tenant hitting one of its numeric caps.
type LimitExceededError struct {
	LimitType string
	Current   int64
	Maximum   int64
	TenantID  uuid.UUID
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("tenant %s exceeded %s limit: %d of %d",
		e.TenantID, e.LimitType, e.Current, e.Maximum)
}

// ValidationError aggregates request validation messages surfaced as one
// client error at the boundary.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Count returns the number of individual validation failures.
func (e *ValidationError) Count() int { return len(e.Messages) }
