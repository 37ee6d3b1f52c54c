package isolation

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/tenant"
)

// TenantFromRequest derives the tenant id a handler should operate under
// when it did not receive one from the middleware directly: first the
// explicit tenant header, then the authenticated user's tenant claim from
// the attached tenant context. Every handler must go through this before
// using a tenant id from any other source.
func TenantFromRequest(r *http.Request) (uuid.UUID, error) {
	if raw := r.Header.Get(tenant.DefaultHeaderName); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, &MissingContextError{
				Suggestion: "o cabeçalho " + tenant.DefaultHeaderName + " deve conter um id de organização válido",
			}
		}
		return id, nil
	}

	if tc, ok := tenant.FromContext(r.Context()); ok {
		if tc.User != nil && tc.User.TenantID != uuid.Nil {
			return tc.User.TenantID, nil
		}
		if tc.TenantID != uuid.Nil {
			return tc.TenantID, nil
		}
	}

	return uuid.Nil, &MissingContextError{
		Suggestion: "envie o cabeçalho " + tenant.DefaultHeaderName + " ou autentique-se com um token que contenha tenant_id",
	}
}

// CheckLimit enforces one of the tenant's numeric caps before a mutation
// that grows usage. Current is the usage before the mutation; the check
// fails once the cap is reached.
func CheckLimit(tenantID uuid.UUID, limits tenant.Limits, limitType tenant.LimitType, current int64) error {
	max := limits.Get(limitType)
	if max == tenant.Unlimited {
		return nil
	}
	if current >= max {
		return &LimitExceededError{
			LimitType: string(limitType),
			Current:   current,
			Maximum:   max,
			TenantID:  tenantID,
		}
	}
	return nil
}
