package isolation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the narrow database surface the validator needs. Both
// *pgxpool.Pool and pgx transactions satisfy it, so checks can run inside
// the caller's transaction when one is open.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Validator enforces at the application layer that the tenant resolved for
// the current request actually owns every entity the request touches — a
// defense-in-depth layer in front of the database row-level security
// policies.
//
// Every check is a single round-trip query against current data; ownership
// is never answered from a cache, because it can change between request
// start and a mutation deeper in the handler chain. All checks are
// read-only and idempotent, so concurrent validations never interfere. The
// validator holds no transaction state; wrapping the subsequent mutation in
// a transaction is the caller's responsibility.
type Validator struct {
	db Querier
}

// New creates a validator over the given querier.
func New(db Querier) *Validator {
	return &Validator{db: db}
}

// ValidateSchoolOwnership confirms the school belongs to the tenant.
func (v *Validator) ValidateSchoolOwnership(ctx context.Context, schoolID int64, tenantID uuid.UUID) error {
	return v.validateOne(ctx, KindSchool, schoolID, tenantID)
}

// ValidateProductOwnership confirms the product belongs to the tenant.
func (v *Validator) ValidateProductOwnership(ctx context.Context, productID int64, tenantID uuid.UUID) error {
	return v.validateOne(ctx, KindProduct, productID, tenantID)
}

// ValidateInventoryItemOwnership confirms the inventory item belongs to the
// tenant.
func (v *Validator) ValidateInventoryItemOwnership(ctx context.Context, itemID int64, tenantID uuid.UUID) error {
	return v.validateOne(ctx, KindInventoryItem, itemID, tenantID)
}

// ValidateBatchOwnership confirms the inventory lot belongs to the tenant.
func (v *Validator) ValidateBatchOwnership(ctx context.Context, batchID int64, tenantID uuid.UUID) error {
	return v.validateOne(ctx, KindBatch, batchID, tenantID)
}

// ValidateUserAccess confirms the user account belongs to the tenant.
func (v *Validator) ValidateUserAccess(ctx context.Context, userID int64, tenantID uuid.UUID) error {
	return v.validateOne(ctx, KindUser, userID, tenantID)
}

func (v *Validator) validateOne(ctx context.Context, kind Kind, id int64, tenantID uuid.UUID) error {
	query := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND tenant_id = $2)",
		kind.table(),
	)

	var owned bool
	if err := v.db.QueryRow(ctx, query, id, tenantID).Scan(&owned); err != nil {
		return fmt.Errorf("isolation: check %s ownership: %w", kind, err)
	}
	if !owned {
		return &OwnershipError{Kind: kind, EntityID: id, TenantID: tenantID, Missing: 1}
	}
	return nil
}

// ValidateBulkOwnership confirms every id belongs to the tenant with a
// single query. Validation is all-or-nothing: one foreign id invalidates
// the whole batch. Duplicate ids are normalized locally; an empty input
// succeeds without touching the database.
func (v *Validator) ValidateBulkOwnership(ctx context.Context, kind Kind, ids []int64, tenantID uuid.UUID) error {
	if !kind.valid() {
		return &UnknownKindError{Name: kind.String()}
	}

	distinct := dedupe(ids)
	if len(distinct) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"SELECT count(*) FROM %s WHERE id = ANY($1) AND tenant_id = $2",
		kind.table(),
	)

	var owned int
	if err := v.db.QueryRow(ctx, query, distinct, tenantID).Scan(&owned); err != nil {
		return fmt.Errorf("isolation: check bulk %s ownership: %w", kind, err)
	}
	if owned != len(distinct) {
		return &OwnershipError{
			Kind:     kind,
			TenantID: tenantID,
			Missing:  len(distinct) - owned,
		}
	}
	return nil
}

// BulkCheck is one entry of a mixed-entity validation.
type BulkCheck struct {
	Kind Kind
	IDs  []int64
}

// ValidateMixedOwnership runs each check in sequence; the first failure
// short-circuits and propagates. Overall success requires every check to
// succeed.
func (v *Validator) ValidateMixedOwnership(ctx context.Context, checks []BulkCheck, tenantID uuid.UUID) error {
	for _, c := range checks {
		if err := v.ValidateBulkOwnership(ctx, c.Kind, c.IDs, tenantID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSchoolProductConsistency confirms a join row ties the school and
// product together under the tenant. Two entities each individually owned
// by the tenant may still not be meant to combine; checking the pair guards
// against parameter-confusion attacks.
func (v *Validator) ValidateSchoolProductConsistency(ctx context.Context, schoolID, productID int64, tenantID uuid.UUID) error {
	const query = `SELECT EXISTS(
		SELECT 1 FROM escola_produtos
		WHERE escola_id = $1 AND produto_id = $2 AND tenant_id = $3
	)`

	var consistent bool
	if err := v.db.QueryRow(ctx, query, schoolID, productID, tenantID).Scan(&consistent); err != nil {
		return fmt.Errorf("isolation: check school/product consistency: %w", err)
	}
	if !consistent {
		return &CrossTenantError{
			Operation:  "escola_produto",
			ResourceID: productID,
			TenantID:   tenantID,
		}
	}
	return nil
}

// ValidateActiveBatchesOwnership is bulk ownership specialized to inventory
// lots still open for movement.
func (v *Validator) ValidateActiveBatchesOwnership(ctx context.Context, batchIDs []int64, tenantID uuid.UUID) error {
	distinct := dedupe(batchIDs)
	if len(distinct) == 0 {
		return nil
	}

	const query = `SELECT count(*) FROM lotes
		WHERE id = ANY($1) AND tenant_id = $2 AND ativo = true`

	var owned int
	if err := v.db.QueryRow(ctx, query, distinct, tenantID).Scan(&owned); err != nil {
		return fmt.Errorf("isolation: check active batches ownership: %w", err)
	}
	if owned != len(distinct) {
		return &OwnershipError{
			Kind:     KindBatch,
			TenantID: tenantID,
			Missing:  len(distinct) - owned,
		}
	}
	return nil
}

// Operation describes a composite multi-entity mutation, such as a stock
// movement referencing a school, several products and a user. Only the
// fields present are validated.
type Operation struct {
	Name             string
	SchoolID         *int64
	ProductIDs       []int64
	InventoryItemIDs []int64
	BatchIDs         []int64
	UserID           *int64
}

func (o Operation) describe() string {
	if o.Name != "" {
		return o.Name
	}
	return "inventory_operation"
}

// ValidateOperation is the composite entry point for complex mutations. On
// any failure it raises AccessDeniedError so the boundary sees one
// consistent shape regardless of which underlying check failed.
func (v *Validator) ValidateOperation(ctx context.Context, op Operation, tenantID uuid.UUID) error {
	fail := func(err error) error {
		return &AccessDeniedError{Operation: op.describe(), Reason: err.Error()}
	}

	if op.SchoolID != nil {
		if err := v.ValidateSchoolOwnership(ctx, *op.SchoolID, tenantID); err != nil {
			return fail(err)
		}
	}
	if len(op.ProductIDs) > 0 {
		if err := v.ValidateBulkOwnership(ctx, KindProduct, op.ProductIDs, tenantID); err != nil {
			return fail(err)
		}
	}
	if len(op.InventoryItemIDs) > 0 {
		if err := v.ValidateBulkOwnership(ctx, KindInventoryItem, op.InventoryItemIDs, tenantID); err != nil {
			return fail(err)
		}
	}
	if len(op.BatchIDs) > 0 {
		if err := v.ValidateActiveBatchesOwnership(ctx, op.BatchIDs, tenantID); err != nil {
			return fail(err)
		}
	}
	if op.UserID != nil {
		if err := v.ValidateUserAccess(ctx, *op.UserID, tenantID); err != nil {
			return fail(err)
		}
	}

	return nil
}

// dedupe returns the distinct ids preserving first-seen order, so query
// plans and error messages are deterministic for a given input.
func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
