package tenant

import (
	"log/slog"
	"net/http"
)

// DefaultHeaderName carries an explicit tenant id or slug.
const DefaultHeaderName = "X-Tenant-ID"

type middlewareConfig struct {
	required          bool
	fallbackToDefault bool
	skipPaths         []string
	headerName        string
	log               *slog.Logger
	userFromRequest   func(r *http.Request, resolver *Resolver) *User
}

func defaultMiddlewareConfig() *middlewareConfig {
	return &middlewareConfig{
		headerName:      DefaultHeaderName,
		log:             slog.New(slog.DiscardHandler),
		userFromRequest: defaultUserFromRequest,
	}
}

// MiddlewareOption configures the tenant context middleware.
type MiddlewareOption func(*middlewareConfig)

// WithRequired makes the middleware reject requests with no resolvable
// tenant (HTTP 400, TENANT_NOT_FOUND). Without it, unresolved requests
// pass through without a tenant context.
func WithRequired(required bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.required = required }
}

// WithFallbackToDefault re-resolves against the sentinel default tenant
// before giving up. Combinable with either policy.
func WithFallbackToDefault(fallback bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.fallbackToDefault = fallback }
}

// WithSkipPaths bypasses tenant resolution for exact path prefixes, such
// as health checks.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.skipPaths = append(c.skipPaths, paths...) }
}

// WithHeaderName overrides the explicit tenant header name.
func WithHeaderName(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.headerName = name
		}
	}
}

// WithMiddlewareLogger sets the logger for resolution diagnostics.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserLookup replaces how the authenticated user is derived from the
// request, for deployments whose token claims differ from the defaults.
func WithUserLookup(lookup func(r *http.Request, resolver *Resolver) *User) MiddlewareOption {
	return func(c *middlewareConfig) {
		if lookup != nil {
			c.userFromRequest = lookup
		}
	}
}

// defaultUserFromRequest derives the user from the bearer token claims when
// a token service is configured. A request without a decodable token simply
// has no user; authentication enforcement is the auth layer's concern.
func defaultUserFromRequest(r *http.Request, resolver *Resolver) *User {
	if resolver.tokens == nil {
		return nil
	}

	token := bearerToken(r)
	if token == "" {
		return nil
	}

	claims := make(map[string]any)
	if err := resolver.tokens.Parse(token, &claims); err != nil {
		return nil
	}

	return userFromClaims(claims)
}
