package apierror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/environment"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/isolation"
)

// Translator maps the validator's and resolver's typed errors to their
// stable codes and user-facing messages at the HTTP boundary. Errors
// outside the taxonomy become 500s; their raw text is redacted in
// production-like modes so internal query and schema information never
// crosses a tenant boundary.
type Translator struct {
	log *slog.Logger
	env environment.Environment
}

// NewTranslator creates a translator. A nil logger discards log output.
func NewTranslator(log *slog.Logger, env environment.Environment) *Translator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Translator{log: log, env: env}
}

// Translate classifies err into its HTTP status and response envelope.
func (t *Translator) Translate(err error) (int, Response) {
	var (
		ownership *isolation.OwnershipError
		limit     *isolation.LimitExceededError
		cross     *isolation.CrossTenantError
		missing   *isolation.MissingContextError
		denied    *isolation.AccessDeniedError
		invalid   *isolation.ValidationError
	)

	switch {
	case errors.As(err, &ownership):
		details := map[string]any{
			"entityType": ownership.Kind.String(),
			"tenantId":   ownership.TenantID.String(),
		}
		if ownership.EntityID != 0 {
			details["entityId"] = ownership.EntityID
		}
		if ownership.Missing > 1 {
			details["missing"] = ownership.Missing
		}
		return Status(CodeOwnership), Response{
			Message: "Recurso não pertence à organização desta requisição.",
			Code:    CodeOwnership,
			Details: details,
		}

	case errors.As(err, &limit):
		return Status(CodeLimitExceeded), Response{
			Message: "Limite do plano da organização atingido.",
			Code:    CodeLimitExceeded,
			Details: map[string]any{
				"limitType": limit.LimitType,
				"current":   limit.Current,
				"maximum":   limit.Maximum,
				"tenantId":  limit.TenantID.String(),
			},
		}

	case errors.As(err, &cross):
		return Status(CodeCrossTenant), Response{
			Message: "Acesso a recurso de outra organização detectado.",
			Code:    CodeCrossTenant,
			Details: map[string]any{
				"operation":  cross.Operation,
				"resourceId": cross.ResourceID,
			},
		}

	case errors.As(err, &missing):
		return Status(CodeMissingContext), Response{
			Message: "Não foi possível identificar a organização da requisição.",
			Code:    CodeMissingContext,
			Details: map[string]any{"suggestion": missing.Suggestion},
		}

	case errors.As(err, &denied):
		return Status(CodeAccessDenied), Response{
			Message: "Operação negada para a organização desta requisição.",
			Code:    CodeAccessDenied,
			Details: map[string]any{
				"operation": denied.Operation,
				"reason":    denied.Reason,
			},
		}

	case errors.As(err, &invalid):
		return Status(CodeValidation), Response{
			Message: "Dados da requisição inválidos.",
			Code:    CodeValidation,
			Details: map[string]any{
				"errors": invalid.Messages,
				"count":  invalid.Count(),
			},
		}
	}

	resp := Response{
		Message: "Erro interno do servidor.",
		Code:    CodeInternal,
	}
	if !t.env.IsProduction() {
		resp.Details = map[string]any{"error": err.Error()}
	}
	return Status(CodeInternal), resp
}

// Respond translates err, logs it with its code and writes the JSON
// envelope. It is the single exit point for validator and resolver errors;
// a failure here terminates only the current request, never the process.
func (t *Translator) Respond(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := t.Translate(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	t.log.LogAttrs(r.Context(), level, "request error",
		slog.String("code", string(resp.Code)),
		slog.Int("status", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
