package dto

import "net/http"

// Error codes emitted by the HTTP layer itself
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
)

// ErrorCodeHTTPStatus maps domain and transport error codes to HTTP
// status codes. Domain codes come straight from the reconciliation
// engine; anything unlisted is treated as an internal error.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,

	// Resource lookups
	"REQUISITION_NOT_FOUND": http.StatusNotFound,
	"PAYMENT_NOT_FOUND":     http.StatusNotFound,
	"EVIDENCE_NOT_FOUND":    http.StatusNotFound,
	"ADJUSTMENT_NOT_FOUND":  http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"DUPLICATE_OPERATION":  http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rules -> 422 Unprocessable Entity
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"AMOUNT_EXCEEDS_PENDING": http.StatusUnprocessableEntity,
	"PENDING_IS_ZERO":        http.StatusUnprocessableEntity,

	// Input validation
	"COMMENT_REQUIRED": http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
