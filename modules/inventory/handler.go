package inventory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/apierror"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/isolation"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/tenant"
)

// MovementStore persists a validated stock movement. Implemented by the
// business layer, which is responsible for wrapping the mutation in a
// transaction.
type MovementStore interface {
	CreateMovement(ctx context.Context, tenantID uuid.UUID, req MovementRequest) error
}

// Handler holds the isolation core pieces every tenant-scoped handler
// needs.
type Handler struct {
	validator  *isolation.Validator
	translator *apierror.Translator
	store      MovementStore
	log        *slog.Logger
}

// NewHandler creates the inventory handler.
func NewHandler(validator *isolation.Validator, translator *apierror.Translator, store MovementStore, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{validator: validator, translator: translator, store: store, log: log}
}

// MovementRequest is a composite stock movement referencing several
// tenant-owned entities at once.
type MovementRequest struct {
	SchoolID   *int64  `json:"escola_id"`
	ProductIDs []int64 `json:"produto_ids"`
	BatchIDs   []int64 `json:"lote_ids"`
	UserID     *int64  `json:"usuario_id"`
	Quantity   float64 `json:"quantidade"`
}

// createMovement is the reference tenant-scoped mutation: re-derive the
// tenant, validate ownership of every referenced entity in one composite
// check, and only then hand off to the business layer.
func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	tenantID, err := isolation.TenantFromRequest(r)
	if err != nil {
		h.translator.Respond(w, r, err)
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.translator.Respond(w, r, &isolation.ValidationError{
			Messages: []string{"corpo da requisição inválido"},
		})
		return
	}

	if !tenant.HasPermission(r.Context(), "estoque:write") {
		h.translator.Respond(w, r, &isolation.AccessDeniedError{
			Operation: "movimentacao_estoque",
			Reason:    "permissão estoque:write ausente",
		})
		return
	}

	op := isolation.Operation{
		Name:       "movimentacao_estoque",
		SchoolID:   req.SchoolID,
		ProductIDs: req.ProductIDs,
		BatchIDs:   req.BatchIDs,
		UserID:     req.UserID,
	}
	if err := h.validator.ValidateOperation(r.Context(), op, tenantID); err != nil {
		h.translator.Respond(w, r, err)
		return
	}

	if h.store != nil {
		if err := h.store.CreateMovement(r.Context(), tenantID, req); err != nil {
			h.translator.Respond(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
}
