package tenant

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrTenantNotFound is returned by stores when no row matches.
	ErrTenantNotFound = errors.New("tenant: not found")

	// ErrInvalidMethod is returned for an unrecognized resolution method.
	ErrInvalidMethod = errors.New("tenant: invalid resolution method")

	// ErrTenantNotActive is the sentinel wrapped by StatusError.
	ErrTenantNotActive = errors.New("tenant: not active")

	// ErrNoTenantInContext is returned when a tenant context is required
	// but none is attached to the request.
	ErrNoTenantInContext = errors.New("tenant: no tenant in context")
)

// StatusError reports a tenant resolved successfully but in a non-active
// lifecycle state. Matches ErrTenantNotActive via errors.Is.
type StatusError struct {
	TenantID uuid.UUID
	Status   Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tenant %s is not active: status %q", e.TenantID, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrTenantNotActive }
