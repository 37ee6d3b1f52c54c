// Package isolation enforces cross-tenant ownership at the application
// layer: every entity a request is about to read or mutate must belong to
// the tenant resolved for that request.
//
// The validator sits in front of the database row-level security policies
// as defense in depth — either layer alone must be sufficient to prevent a
// leak. Checks are single round-trip queries against current data (one
// batched query for bulk and composite checks, never N+1), and results are
// never cached: ownership can change between request start and a specific
// mutation deeper in a handler chain.
//
// Operations either return nil or raise a typed error; none return a
// boolean. Bulk validation is all-or-nothing — a single foreign id
// invalidates the whole batch rather than being silently dropped.
package isolation
