package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/jwt"
)

// Method identifies a tenant resolution strategy.
type Method string

const (
	// MethodSubdomain matches the tenant subdomain column exactly.
	MethodSubdomain Method = "subdomain"
	// MethodHeader accepts a tenant id or slug, trying id-equality first.
	MethodHeader Method = "header"
	// MethodToken reads the tenant_id claim from a bearer token.
	MethodToken Method = "token"
	// MethodDomain matches the tenant custom domain column exactly.
	MethodDomain Method = "domain"
)

// fallbackOrder is the deterministic chain tried by ResolveWithFallback.
// The order is data, not code: precedence changes are a one-line edit here.
var fallbackOrder = []Method{MethodHeader, MethodToken, MethodSubdomain, MethodDomain}

func (m Method) valid() bool {
	switch m {
	case MethodSubdomain, MethodHeader, MethodToken, MethodDomain:
		return true
	}
	return false
}

// CacheKey builds the cache key for a resolution method and raw value.
func CacheKey(m Method, raw string) string {
	return string(m) + ":" + raw
}

// Resolution is the outcome of a composed resolve: the tenant found, the
// method that found it, or the error that stopped the chain.
type Resolution struct {
	Tenant *Tenant
	Method Method
	Err    error
}

const (
	// DefaultPositiveTTL bounds staleness of successful resolutions.
	DefaultPositiveTTL = 5 * time.Minute
	// DefaultNegativeTTL is shorter so a newly provisioned tenant becomes
	// resolvable quickly.
	DefaultNegativeTTL = 30 * time.Second
)

// Resolver maps resolution signals to tenants, consulting its cache before
// the store. A nil result with a nil error means no tenant matched; errors
// are reserved for infrastructure failures and invalid methods.
type Resolver struct {
	store       Store
	cache       Cache
	tokens      *jwt.Service
	positiveTTL time.Duration
	negativeTTL time.Duration
	defaultID   uuid.UUID
	log         *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache replaces the default in-memory cache.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithCacheTTL sets the TTL for successful resolutions.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.positiveTTL = ttl
		}
	}
}

// WithNegativeCacheTTL sets the TTL for cached "no such tenant" results.
func WithNegativeCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.negativeTTL = ttl
		}
	}
}

// WithTokenService enables MethodToken resolution. Without it the token
// method always resolves to no tenant.
func WithTokenService(svc *jwt.Service) ResolverOption {
	return func(r *Resolver) { r.tokens = svc }
}

// WithDefaultTenantID overrides the sentinel used by the fallback chain.
func WithDefaultTenantID(id uuid.UUID) ResolverOption {
	return func(r *Resolver) { r.defaultID = id }
}

// WithResolverLogger sets the logger used for cache invalidation and
// resolution diagnostics.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:       store,
		cache:       NewMemoryCache(),
		positiveTTL: DefaultPositiveTTL,
		negativeTTL: DefaultNegativeTTL,
		defaultID:   DefaultTenantID,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up a tenant by the given method and raw value. It returns
// (nil, nil) when no tenant matches; ErrInvalidMethod for an unknown method;
// store errors propagate unmodified so callers never mistake an outage for
// a missing tenant.
func (r *Resolver) Resolve(ctx context.Context, m Method, raw string) (*Tenant, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
	}

	key := CacheKey(m, raw)
	if t, ok := r.cache.Get(ctx, key); ok {
		return t, nil
	}

	t, err := r.lookup(ctx, m, raw)
	if err != nil {
		return nil, err
	}

	ttl := r.positiveTTL
	if t == nil {
		ttl = r.negativeTTL
	}
	r.cache.Set(ctx, key, t, ttl)

	return t, nil
}

func (r *Resolver) lookup(ctx context.Context, m Method, raw string) (*Tenant, error) {
	switch m {
	case MethodSubdomain:
		return r.found(r.store.GetBySubdomain(ctx, raw))
	case MethodDomain:
		return r.found(r.store.GetByDomain(ctx, raw))
	case MethodHeader:
		return r.lookupHeader(ctx, raw)
	case MethodToken:
		return r.lookupToken(ctx, raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
}

// lookupHeader accepts either a tenant id or a slug, trying id first.
func (r *Resolver) lookupHeader(ctx context.Context, raw string) (*Tenant, error) {
	if id, err := uuid.Parse(raw); err == nil {
		t, err := r.found(r.store.GetByID(ctx, id))
		if err != nil || t != nil {
			return t, err
		}
	}
	return r.found(r.store.GetBySlug(ctx, raw))
}

// lookupToken trusts the tenant_id claim of an already-issued token.
// Cryptographic policy (key rotation, issuance) belongs to the auth layer;
// a token that fails to decode resolves to no tenant rather than an error.
func (r *Resolver) lookupToken(ctx context.Context, raw string) (*Tenant, error) {
	if r.tokens == nil {
		return nil, nil
	}

	claims := make(map[string]any)
	if err := r.tokens.Parse(raw, &claims); err != nil {
		return nil, nil
	}

	claim, ok := claims["tenant_id"].(string)
	if !ok || claim == "" {
		return nil, nil
	}

	id, err := uuid.Parse(claim)
	if err != nil {
		return nil, nil
	}

	return r.found(r.store.GetByID(ctx, id))
}

// found normalizes store results: ErrTenantNotFound becomes (nil, nil).
func (r *Resolver) found(t *Tenant, err error) (*Tenant, error) {
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ResolveWithFallback tries the preferred method first, then the remaining
// methods in fallbackOrder with the same raw value, and finally the default
// tenant id via the header method. Infrastructure errors stop the chain
// immediately; only "no tenant matched" results advance it.
func (r *Resolver) ResolveWithFallback(ctx context.Context, preferred Method, raw string) Resolution {
	if !preferred.valid() {
		return Resolution{Err: fmt.Errorf("%w: %q", ErrInvalidMethod, preferred)}
	}

	type strategy struct {
		method Method
		value  string
	}

	chain := make([]strategy, 0, len(fallbackOrder)+1)
	chain = append(chain, strategy{preferred, raw})
	for _, m := range fallbackOrder {
		if m != preferred {
			chain = append(chain, strategy{m, raw})
		}
	}
	chain = append(chain, strategy{MethodHeader, r.defaultID.String()})

	for _, s := range chain {
		t, err := r.Resolve(ctx, s.method, s.value)
		if err != nil {
			return Resolution{Err: err}
		}
		if t != nil {
			return Resolution{Tenant: t, Method: s.method}
		}
	}

	return Resolution{Err: ErrTenantNotFound}
}

// ResolveDefault resolves the sentinel default tenant.
func (r *Resolver) ResolveDefault(ctx context.Context) (*Tenant, error) {
	return r.Resolve(ctx, MethodHeader, r.defaultID.String())
}

// DefaultID returns the sentinel tenant id used by the fallback path.
func (r *Resolver) DefaultID() uuid.UUID { return r.defaultID }

// ValidateStatus returns a StatusError when the tenant is not active.
// Callers must check this after any successful resolution before trusting
// the tenant for a mutating request.
func (r *Resolver) ValidateStatus(t *Tenant) error {
	if t == nil {
		return ErrTenantNotFound
	}
	if t.Status != StatusActive {
		return &StatusError{TenantID: t.ID, Status: t.Status}
	}
	return nil
}

// ClearCache removes the given cache keys, or every entry when called with
// no arguments. Call it after any tenant status or identity-field update;
// until then a stale resolution may be served for up to one TTL window.
func (r *Resolver) ClearCache(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		r.cache.Purge(ctx)
		r.log.DebugContext(ctx, "tenant resolution cache purged")
		return
	}
	for _, key := range keys {
		r.cache.Delete(ctx, key)
	}
	r.log.DebugContext(ctx, "tenant resolution cache invalidated", slog.Int("keys", len(keys)))
}

// InvalidateTenant removes every cache entry that could resolve to t.
func (r *Resolver) InvalidateTenant(ctx context.Context, t *Tenant) {
	if t == nil {
		return
	}
	// Token entries are keyed by the raw token string and cannot be
	// enumerated here; they age out on their own TTL.
	keys := []string{
		CacheKey(MethodHeader, t.ID.String()),
		CacheKey(MethodHeader, t.Slug),
	}
	if t.Subdomain != "" {
		keys = append(keys, CacheKey(MethodSubdomain, t.Subdomain))
	}
	if t.Domain != "" {
		keys = append(keys, CacheKey(MethodDomain, t.Domain))
	}
	r.ClearCache(ctx, keys...)
}
