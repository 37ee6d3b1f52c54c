package apierror

import (
	"net/http"
)

// Code is a stable machine-readable error code. Codes, not human messages,
// are the API contract.
type Code string

const (
	CodeOwnership      Code = "TENANT_OWNERSHIP_ERROR"
	CodeLimitExceeded  Code = "TENANT_INVENTORY_LIMIT_ERROR"
	CodeCrossTenant    Code = "CROSS_TENANT_INVENTORY_ACCESS"
	CodeMissingContext Code = "TENANT_CONTEXT_MISSING"
	CodeAccessDenied   Code = "TENANT_INVENTORY_ACCESS_DENIED"
	CodeValidation     Code = "TENANT_INVENTORY_VALIDATION_ERROR"
	CodeInternal       Code = "INTERNAL_SERVER_ERROR"
)

// statusByCode fixes the HTTP status for each code of the closed taxonomy.
var statusByCode = map[Code]int{
	CodeOwnership:      http.StatusForbidden,
	CodeLimitExceeded:  http.StatusTooManyRequests,
	CodeCrossTenant:    http.StatusForbidden,
	CodeMissingContext: http.StatusBadRequest,
	CodeAccessDenied:   http.StatusForbidden,
	CodeValidation:     http.StatusBadRequest,
	CodeInternal:       http.StatusInternalServerError,
}

// Status returns the HTTP status for a code, defaulting to 500 for
// anything outside the taxonomy.
func Status(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Response is the JSON envelope emitted for every translated error.
type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    Code           `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}
