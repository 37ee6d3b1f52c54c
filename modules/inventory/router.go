// Package inventory wires the tenant isolation core into the stock
// module's HTTP surface. The business logic of stock movements lives in
// the handlers layer; this package shows the contract every tenant-scoped
// route follows: middleware resolves the tenant, the handler extracts it,
// the validator confirms ownership, the translator renders failures.
package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/tenant"
)

// Router mounts the inventory routes behind the tenant context middleware.
// Health checks bypass resolution entirely.
func Router(h *Handler, resolver *tenant.Resolver, opts ...tenant.MiddlewareOption) chi.Router {
	r := chi.NewRouter()

	middlewareOpts := append([]tenant.MiddlewareOption{
		tenant.WithRequired(true),
		tenant.WithSkipPaths("/health"),
	}, opts...)
	r.Use(tenant.Middleware(resolver, middlewareOpts...))

	r.Get("/health", h.health)
	r.Post("/movimentacoes", h.createMovement)

	return r
}

// AdminRouter mounts system-admin routes that must not carry tenant
// scoping.
func AdminRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(tenant.NoTenant())
	r.Get("/health", h.health)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
