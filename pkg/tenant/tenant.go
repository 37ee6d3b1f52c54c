package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTenantID is the sentinel tenant used by the fallback-to-default
// resolution path. It must exist as a real, active row in the tenant store
// for fallback to succeed.
var DefaultTenantID = uuid.Nil

// Status represents the tenant lifecycle state. Tenants are never physically
// deleted; deactivation is a status transition.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

// Tenant is an organization (a municipality or school network) in the
// multi-tenant system. Slug and, when present, Subdomain and Domain are
// globally unique.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Subdomain string    `json:"subdomain,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	Status    Status    `json:"status"`
	Settings  Settings  `json:"settings"`
	Limits    Limits    `json:"limits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the tenant may be used for request handling.
func (t *Tenant) Active() bool {
	return t != nil && t.Status == StatusActive
}

// Store loads tenant rows from the persistence layer. Implementations return
// ErrTenantNotFound when no row matches; any other error is an infrastructure
// failure and must not be swallowed.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
}
