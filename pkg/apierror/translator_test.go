package apierror_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/apierror"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/environment"
	"github.com/ewenunessn/gestaoescolar-sub010/pkg/isolation"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusForbidden, apierror.Status(apierror.CodeOwnership))
	assert.Equal(t, http.StatusTooManyRequests, apierror.Status(apierror.CodeLimitExceeded))
	assert.Equal(t, http.StatusForbidden, apierror.Status(apierror.CodeCrossTenant))
	assert.Equal(t, http.StatusBadRequest, apierror.Status(apierror.CodeMissingContext))
	assert.Equal(t, http.StatusForbidden, apierror.Status(apierror.CodeAccessDenied))
	assert.Equal(t, http.StatusBadRequest, apierror.Status(apierror.CodeValidation))
	assert.Equal(t, http.StatusInternalServerError, apierror.Status(apierror.Code("SOMETHING_ELSE")))
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tr := apierror.NewTranslator(nil, environment.Development)
	tenantID := uuid.New()

	t.Run("ownership error", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.OwnershipError{
			Kind:     isolation.KindProduct,
			EntityID: 123,
			TenantID: tenantID,
			Missing:  1,
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, apierror.CodeOwnership, resp.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "produto", resp.Details["entityType"])
		assert.Equal(t, int64(123), resp.Details["entityId"])
		assert.Equal(t, tenantID.String(), resp.Details["tenantId"])
	})

	t.Run("bulk ownership error carries the missing count", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.OwnershipError{
			Kind:     isolation.KindBatch,
			TenantID: tenantID,
			Missing:  3,
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, 3, resp.Details["missing"])
		assert.NotContains(t, resp.Details, "entityId")
	})

	t.Run("limit exceeded", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.LimitExceededError{
			LimitType: "products",
			Current:   1000,
			Maximum:   1000,
			TenantID:  tenantID,
		})

		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, apierror.CodeLimitExceeded, resp.Code)
		assert.Equal(t, "products", resp.Details["limitType"])
		assert.Equal(t, int64(1000), resp.Details["maximum"])
	})

	t.Run("cross tenant", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.CrossTenantError{
			Operation:  "escola_produto",
			ResourceID: 42,
			TenantID:   tenantID,
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, apierror.CodeCrossTenant, resp.Code)
		assert.Equal(t, "escola_produto", resp.Details["operation"])
	})

	t.Run("missing context", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.MissingContextError{Suggestion: "envie o cabeçalho X-Tenant-ID"})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, apierror.CodeMissingContext, resp.Code)
		assert.Equal(t, "envie o cabeçalho X-Tenant-ID", resp.Details["suggestion"])
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.AccessDeniedError{
			Operation: "movimentacao_estoque",
			Reason:    "escola 5 does not belong to tenant",
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, apierror.CodeAccessDenied, resp.Code)
		assert.Equal(t, "movimentacao_estoque", resp.Details["operation"])
	})

	t.Run("validation error aggregates messages", func(t *testing.T) {
		t.Parallel()

		status, resp := tr.Translate(&isolation.ValidationError{
			Messages: []string{"escola_id é obrigatório", "quantidade deve ser positiva"},
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, apierror.CodeValidation, resp.Code)
		assert.Equal(t, 2, resp.Details["count"])
	})

	t.Run("wrapped errors still classify", func(t *testing.T) {
		t.Parallel()

		wrapped := &isolation.AccessDeniedError{
			Operation: "movimentacao_estoque",
			Reason: (&isolation.OwnershipError{
				Kind:     isolation.KindSchool,
				EntityID: 5,
				TenantID: tenantID,
				Missing:  1,
			}).Error(),
		}

		status, resp := tr.Translate(wrapped)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, apierror.CodeAccessDenied, resp.Code)
	})
}

func TestTranslateUnknownError(t *testing.T) {
	t.Parallel()

	t.Run("development exposes the raw error", func(t *testing.T) {
		t.Parallel()

		tr := apierror.NewTranslator(nil, environment.Development)
		status, resp := tr.Translate(assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, apierror.CodeInternal, resp.Code)
		require.Contains(t, resp.Details, "error")
		assert.Equal(t, assert.AnError.Error(), resp.Details["error"])
	})

	t.Run("production redacts internals", func(t *testing.T) {
		t.Parallel()

		tr := apierror.NewTranslator(nil, environment.Production)
		status, resp := tr.Translate(assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, apierror.CodeInternal, resp.Code)
		assert.NotContains(t, resp.Details, "error")
		assert.NotContains(t, resp.Message, assert.AnError.Error())
	})
}

func TestRespond(t *testing.T) {
	t.Parallel()

	tr := apierror.NewTranslator(nil, environment.Development)

	req := httptest.NewRequest(http.MethodPost, "/api/movimentacoes", nil)
	rec := httptest.NewRecorder()

	tr.Respond(rec, req, &isolation.OwnershipError{
		Kind:     isolation.KindProduct,
		EntityID: 123,
		TenantID: uuid.New(),
		Missing:  1,
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(apierror.CodeOwnership), body["code"])
	assert.NotEmpty(t, body["message"])

	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 123, details["entityId"])
}
