package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// User is the authenticated principal attached to a tenant context. The
// role is tenant-scoped: the same person may hold different roles in
// different tenants.
type User struct {
	ID       int64
	TenantID uuid.UUID
	Role     string
	Email    string
}

// Context is the per-request resolved tenant state: the tenant itself, the
// authenticated user, the resolved permission set and the effective
// settings/limits (tenant values merged with schema defaults). It is built
// once by the middleware, lives for the request, and is never persisted.
type Context struct {
	TenantID    uuid.UUID
	Tenant      *Tenant
	User        *User
	Permissions map[string]struct{}
	Settings    Settings
	Limits      Limits
}

// rolePermissions maps tenant-scoped roles to capabilities. "*" grants
// everything. Unknown roles get the read-only baseline.
var rolePermissions = map[string][]string{
	"admin":       {"*"},
	"gestor":      {"escolas:manage", "produtos:manage", "estoque:manage", "contratos:manage", "usuarios:read"},
	"nutricionista": {"escolas:read", "produtos:manage", "estoque:read", "cardapios:manage"},
	"operador":    {"escolas:read", "produtos:read", "estoque:write"},
}

var baselinePermissions = []string{"escolas:read", "produtos:read", "estoque:read"}

// NewContext builds a request context for the given tenant and optional
// user, resolving permissions from the user's role and merging settings and
// limits with their defaults.
func NewContext(t *Tenant, u *User) *Context {
	c := &Context{
		Tenant:      t,
		User:        u,
		Permissions: make(map[string]struct{}),
	}
	if t != nil {
		c.TenantID = t.ID
		c.Settings = t.Settings.Effective()
		c.Limits = t.Limits.Effective()
	}

	perms := baselinePermissions
	if u != nil {
		if p, ok := rolePermissions[u.Role]; ok {
			perms = p
		}
	}
	for _, p := range perms {
		c.Permissions[p] = struct{}{}
	}

	return c
}

// Can reports whether the context's permission set includes perm.
func (c *Context) Can(perm string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.Permissions["*"]; ok {
		return true
	}
	_, ok := c.Permissions[perm]
	return ok
}

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext attaches the tenant context to ctx.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// WithoutTenant explicitly clears any attached tenant context. System-admin
// routes use it so downstream code cannot accidentally run tenant-scoped.
func WithoutTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, (*Context)(nil))
}

// FromContext retrieves the tenant context. Returns false when no context
// is attached or it has been cleared.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}

// IDFromContext returns just the tenant id from the context.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tc, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return tc.TenantID, true
}

// MustFromContext panics if no tenant context is attached. Use only in
// handlers mounted strictly behind a required-policy middleware.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tc
}

// HasPermission is a pure lookup against the attached context's permission
// set. It returns false when no context is attached and never panics.
func HasPermission(ctx context.Context, perm string) bool {
	tc, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return tc.Can(perm)
}

// LoggerExtractor enriches log records with the resolved tenant id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
