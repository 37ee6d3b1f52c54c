package tenant_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/jwt"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/tenant"
)

// fakeStore is an in-memory tenant store that counts queries.
type fakeStore struct {
	tenants []*tenant.Tenant
	calls   atomic.Int64
	err     error
}

func (s *fakeStore) find(match func(*tenant.Tenant) bool) (*tenant.Tenant, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	for _, t := range s.tenants {
		if match(t) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.ID == id })
}

func (s *fakeStore) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Slug == slug })
}

func (s *fakeStore) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Subdomain == subdomain })
}

func (s *fakeStore) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Domain == domain })
}

func activeTenant(slug string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        uuid.New(),
		Slug:      slug,
		Subdomain: slug,
		Status:    tenant.StatusActive,
		CreatedAt: time.Now(),
	}
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	t.Run("resolves by subdomain", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		got, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("returns nil without error for unknown subdomain", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		resolver := tenant.NewResolver(store)

		got, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("header accepts id then slug", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		byID, err := resolver.Resolve(context.Background(), tenant.MethodHeader, acme.ID.String())
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, acme.ID, byID.ID)

		bySlug, err := resolver.Resolve(context.Background(), tenant.MethodHeader, "acme")
		require.NoError(t, err)
		require.NotNil(t, bySlug)
		assert.Equal(t, acme.ID, bySlug.ID)
	})

	t.Run("resolves by domain", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		acme.Domain = "merenda.acme.gov.br"
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		got, err := resolver.Resolve(context.Background(), tenant.MethodDomain, "merenda.acme.gov.br")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("rejects invalid method", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(&fakeStore{})

		got, err := resolver.Resolve(context.Background(), tenant.Method("bogus"), "x")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, tenant.ErrInvalidMethod)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		t.Parallel()

		infra := errors.New("connection refused")
		store := &fakeStore{err: infra}
		resolver := tenant.NewResolver(store)

		got, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, infra)
	})
}

func TestResolverToken(t *testing.T) {
	t.Parallel()

	signer, err := jwt.NewFromString("test-signing-key-test-signing-key")
	require.NoError(t, err)

	acme := activeTenant("acme")
	store := &fakeStore{tenants: []*tenant.Tenant{acme}}
	resolver := tenant.NewResolver(store, tenant.WithTokenService(signer))

	t.Run("resolves tenant_id claim", func(t *testing.T) {
		t.Parallel()

		token, err := signer.Generate(map[string]any{"tenant_id": acme.ID.String()})
		require.NoError(t, err)

		got, err := resolver.Resolve(context.Background(), tenant.MethodToken, token)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("undecodable token resolves to no tenant", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.Resolve(context.Background(), tenant.MethodToken, "not.a.token")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing claim resolves to no tenant", func(t *testing.T) {
		t.Parallel()

		token, err := signer.Generate(map[string]any{"sub": "someone"})
		require.NoError(t, err)

		got, err := resolver.Resolve(context.Background(), tenant.MethodToken, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestResolverCaching(t *testing.T) {
	t.Parallel()

	t.Run("repeat resolution within TTL hits store once", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		for range 3 {
			got, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
			require.NoError(t, err)
			require.NotNil(t, got)
		}
		assert.EqualValues(t, 1, store.calls.Load())
	})

	t.Run("negative results are cached too", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		resolver := tenant.NewResolver(store)

		for range 3 {
			got, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "ghost")
			require.NoError(t, err)
			assert.Nil(t, got)
		}
		assert.EqualValues(t, 1, store.calls.Load())
	})

	t.Run("clearing a key forces a second store query", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		_, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		require.NoError(t, err)

		resolver.ClearCache(context.Background(), tenant.CacheKey(tenant.MethodSubdomain, "acme"))

		_, err = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		require.NoError(t, err)
		assert.EqualValues(t, 2, store.calls.Load())
	})

	t.Run("clearing with no keys purges everything", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		beta := activeTenant("beta")
		store := &fakeStore{tenants: []*tenant.Tenant{acme, beta}}
		resolver := tenant.NewResolver(store)

		_, _ = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		_, _ = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "beta")
		resolver.ClearCache(context.Background())
		_, _ = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
		_, _ = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "beta")

		assert.EqualValues(t, 4, store.calls.Load())
	})
}

func TestResolverFallback(t *testing.T) {
	t.Parallel()

	t.Run("preferred method wins when it resolves", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		store := &fakeStore{tenants: []*tenant.Tenant{acme}}
		resolver := tenant.NewResolver(store)

		res := resolver.ResolveWithFallback(context.Background(), tenant.MethodSubdomain, "acme")
		require.NoError(t, res.Err)
		require.NotNil(t, res.Tenant)
		assert.Equal(t, tenant.MethodSubdomain, res.Method)
		assert.Equal(t, acme.ID, res.Tenant.ID)
	})

	t.Run("chain ends at the default tenant", func(t *testing.T) {
		t.Parallel()

		def := &tenant.Tenant{ID: tenant.DefaultTenantID, Slug: "default", Status: tenant.StatusActive}
		store := &fakeStore{tenants: []*tenant.Tenant{def}}
		resolver := tenant.NewResolver(store)

		res := resolver.ResolveWithFallback(context.Background(), tenant.MethodSubdomain, "ghost")
		require.NoError(t, res.Err)
		require.NotNil(t, res.Tenant)
		assert.Equal(t, tenant.DefaultTenantID, res.Tenant.ID)
		assert.Equal(t, tenant.MethodHeader, res.Method)
	})

	t.Run("reports tenant not found when even the default is missing", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(&fakeStore{})

		res := resolver.ResolveWithFallback(context.Background(), tenant.MethodSubdomain, "ghost")
		assert.Nil(t, res.Tenant)
		assert.ErrorIs(t, res.Err, tenant.ErrTenantNotFound)
	})

	t.Run("invalid preferred method fails with empty method", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(&fakeStore{})

		res := resolver.ResolveWithFallback(context.Background(), tenant.Method("bogus"), "x")
		assert.Nil(t, res.Tenant)
		assert.Empty(t, res.Method)
		require.Error(t, res.Err)
		assert.NotEmpty(t, res.Err.Error())
		assert.ErrorIs(t, res.Err, tenant.ErrInvalidMethod)
	})

	t.Run("infra errors stop the chain instead of falling back", func(t *testing.T) {
		t.Parallel()

		infra := errors.New("connection refused")
		store := &fakeStore{err: infra}
		resolver := tenant.NewResolver(store)

		res := resolver.ResolveWithFallback(context.Background(), tenant.MethodSubdomain, "acme")
		assert.Nil(t, res.Tenant)
		assert.ErrorIs(t, res.Err, infra)
	})
}

func TestValidateStatus(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewResolver(&fakeStore{})

	t.Run("active passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, resolver.ValidateStatus(activeTenant("acme")))
	})

	t.Run("suspended fails with typed error", func(t *testing.T) {
		t.Parallel()

		suspended := activeTenant("acme")
		suspended.Status = tenant.StatusSuspended

		err := resolver.ValidateStatus(suspended)
		require.Error(t, err)
		assert.ErrorIs(t, err, tenant.ErrTenantNotActive)

		var statusErr *tenant.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, tenant.StatusSuspended, statusErr.Status)
	})

	t.Run("nil tenant fails", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, resolver.ValidateStatus(nil), tenant.ErrTenantNotFound)
	})
}

func TestInvalidateTenant(t *testing.T) {
	t.Parallel()

	acme := activeTenant("acme")
	store := &fakeStore{tenants: []*tenant.Tenant{acme}}
	resolver := tenant.NewResolver(store)

	_, err := resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
	require.NoError(t, err)

	resolver.InvalidateTenant(context.Background(), acme)

	_, err = resolver.Resolve(context.Background(), tenant.MethodSubdomain, "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 2, store.calls.Load())
}
