// Package tenant implements tenant identity resolution for the
// multi-tenant school-meal platform: determining which organization an
// inbound request belongs to, from several competing signals, with
// caching, status validation and a fallback chain ending in a sentinel
// default tenant.
//
// # Resolution
//
// Four methods are supported: subdomain, explicit header (id or slug),
// bearer-token claim and custom domain. All of them consult a
// time-bounded cache keyed by "method:value" before touching the store;
// negative results are cached with a shorter TTL so lookups for
// nonexistent tenants do not hammer the database.
//
//	store := tenant.NewPGStore(pool)
//	resolver := tenant.NewResolver(store,
//		tenant.WithCache(tenant.NewRedisCache(redisClient)),
//		tenant.WithTokenService(jwtSvc),
//	)
//
// # Middleware
//
// The HTTP middleware extracts the available signals in precedence order,
// applies the configured policy (required, optional, fallback-to-default)
// and attaches a request-scoped Context carrying the tenant, the
// authenticated user, the resolved permission set and the effective
// settings and limits.
//
//	r.Use(tenant.Middleware(resolver,
//		tenant.WithRequired(true),
//		tenant.WithSkipPaths("/health"),
//	))
//
// Downstream handlers read the context with FromContext and must still
// call the isolation validator before any tenant-scoped write; resolution
// establishes identity, not ownership.
package tenant
