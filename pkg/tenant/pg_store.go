package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the pgx-backed tenant store. Settings and limits live in JSONB
// columns so each field stays independently overridable without schema
// churn.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store over the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const tenantColumns = `id, slug, coalesce(subdomain, ''), coalesce(domain, ''), status, settings, limits, created_at, updated_at`

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *PGStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.getBy(ctx, "slug = $1", slug)
}

func (s *PGStore) GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return s.getBy(ctx, "subdomain = $1", subdomain)
}

func (s *PGStore) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return s.getBy(ctx, "domain = $1", domain)
}

func (s *PGStore) getBy(ctx context.Context, where string, arg any) (*Tenant, error) {
	query := fmt.Sprintf("SELECT %s FROM tenants WHERE %s", tenantColumns, where)

	var (
		t           Tenant
		rawSettings []byte
		rawLimits   []byte
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.Slug, &t.Subdomain, &t.Domain, &t.Status,
		&rawSettings, &rawLimits, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenant: query store: %w", err)
	}

	if len(rawSettings) > 0 {
		if err := json.Unmarshal(rawSettings, &t.Settings); err != nil {
			return nil, fmt.Errorf("tenant: decode settings for %s: %w", t.ID, err)
		}
	}
	if len(rawLimits) > 0 {
		if err := json.Unmarshal(rawLimits, &t.Limits); err != nil {
			return nil, fmt.Errorf("tenant: decode limits for %s: %w", t.ID, err)
		}
	}

	return &t, nil
}

// UpdateStatus transitions the tenant lifecycle state. The caller is
// responsible for invalidating the resolution cache afterwards (see
// Resolver.InvalidateTenant).
func (s *PGStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE tenants SET status = $2, updated_at = now() WHERE id = $1",
		id, status,
	)
	if err != nil {
		return fmt.Errorf("tenant: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}
