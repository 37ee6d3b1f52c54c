package tenant

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// signal is one candidate resolution input extracted from the request.
type signal struct {
	method Method
	value  string
}

// Middleware resolves the tenant for every inbound request and attaches a
// Context for downstream consumption.
//
// Signals are tried in a fixed precedence: explicit tenant header, bearer
// token claim, subdomain from the Host header, custom domain from the Host
// header. Per request the middleware moves Unresolved -> Resolving and ends
// in exactly one of Resolved (context attached), Rejected (error response
// written, chain halted) or PassedThroughWithoutTenant (optional policy,
// no context).
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := defaultMiddlewareConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()

			var resolved *Tenant
			for _, sig := range extractSignals(r, cfg.headerName) {
				t, err := resolver.Resolve(ctx, sig.method, sig.value)
				if err != nil {
					// Infrastructure failure, not a missing tenant:
					// never downgraded to a fallback or pass-through.
					cfg.log.ErrorContext(ctx, "tenant resolution failed",
						"method", string(sig.method), "error", err)
					writeResolutionError(w, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR", "Falha ao resolver organização.", nil)
					return
				}
				if t != nil {
					resolved = t
					break
				}
			}

			if resolved == nil && cfg.fallbackToDefault {
				t, err := resolver.ResolveDefault(ctx)
				if err != nil {
					cfg.log.ErrorContext(ctx, "default tenant resolution failed", "error", err)
					writeResolutionError(w, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR", "Falha ao resolver organização.", nil)
					return
				}
				resolved = t
			}

			if resolved == nil {
				if cfg.required {
					writeResolutionError(w, http.StatusBadRequest,
						"TENANT_NOT_FOUND",
						"Nenhuma organização identificada para esta requisição.",
						map[string]any{"host": r.Host})
					return
				}
				// Optional policy: downstream code must itself check
				// for the absence of a tenant context.
				next.ServeHTTP(w, r)
				return
			}

			if err := resolver.ValidateStatus(resolved); err != nil {
				writeResolutionError(w, http.StatusForbidden,
					"TENANT_INACTIVE",
					"Organização não está ativa.",
					map[string]any{"status": string(resolved.Status)})
				return
			}

			tc := NewContext(resolved, cfg.userFromRequest(r, resolver))
			next.ServeHTTP(w, r.WithContext(WithContext(ctx, tc)))
		})
	}
}

// NoTenant clears any previously attached tenant context. Mount it on
// system-admin routes that must not carry tenant scoping.
func NoTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithoutTenant(r.Context())))
		})
	}
}

// extractSignals returns the available resolution signals in precedence
// order. The order is a visible list, not implicit control flow.
func extractSignals(r *http.Request, headerName string) []signal {
	signals := make([]signal, 0, 4)

	if v := strings.TrimSpace(r.Header.Get(headerName)); v != "" {
		signals = append(signals, signal{MethodHeader, v})
	}

	if token := bearerToken(r); token != "" {
		signals = append(signals, signal{MethodToken, token})
	}

	// A host either carries a tenant subdomain or is a custom domain,
	// never both.
	host := hostWithoutPort(r.Host)
	if sub := subdomainLabel(host); sub != "" {
		signals = append(signals, signal{MethodSubdomain, sub})
	} else if host != "" && strings.Contains(host, ".") {
		signals = append(signals, signal{MethodDomain, host})
	}

	return signals
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func hostWithoutPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// subdomainLabel returns the first host label when the host has the
// subdomain.domain.tld shape. The bare domain and www are not tenants.
func subdomainLabel(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	label := parts[0]
	if label == "" || label == "www" {
		return ""
	}
	return label
}

// userFromClaims maps validated bearer-token claims to a User. JSON numbers
// decode as float64; string user ids are accepted for older tokens.
func userFromClaims(claims map[string]any) *User {
	u := &User{}

	switch v := claims["user_id"].(type) {
	case float64:
		u.ID = int64(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		u.ID = id
	default:
		return nil
	}

	if role, ok := claims["role"].(string); ok {
		u.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if raw, ok := claims["tenant_id"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			u.TenantID = id
		}
	}

	return u
}

// writeResolutionError emits the resolution-failure envelope. The error
// code, not the human message, is the stable contract.
func writeResolutionError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	body := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	_ = json.NewEncoder(w).Encode(body)
}
