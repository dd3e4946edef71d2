// internal/app/system/apierrors/apierrors.go
package apierrors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Machine-readable error codes returned to callers. The UI displays the
// message and offers retry; the code is stable for programmatic handling.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeConflict         = "CONFLICT"
	CodeCascadeDelete    = "CASCADE_DELETE_FAILED"
	CodeInternal         = "INTERNAL_ERROR"

	// Auth plumbing codes, not part of the domain taxonomy.
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func write(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Validation writes a 400 VALIDATION_ERROR. Details may carry offending
// ids or field names.
func Validation(w http.ResponseWriter, message string, details map[string]any) {
	write(w, http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: message, Details: details})
}

// NotFound writes a 404 NOT_FOUND.
func NotFound(w http.ResponseWriter, message string) {
	write(w, http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: message})
}

// CapacityExceeded writes a 409 CAPACITY_EXCEEDED.
func CapacityExceeded(w http.ResponseWriter, message string, details map[string]any) {
	write(w, http.StatusConflict, ErrorBody{Code: CodeCapacityExceeded, Message: message, Details: details})
}

// Conflict writes a 409 CONFLICT (duplicate email/username and the like).
func Conflict(w http.ResponseWriter, message string) {
	write(w, http.StatusConflict, ErrorBody{Code: CodeConflict, Message: message})
}

// CascadeDeleteFailed writes a 500 CASCADE_DELETE_FAILED for multi-step
// deletions that partially completed.
func CascadeDeleteFailed(w http.ResponseWriter, message string, details map[string]any) {
	write(w, http.StatusInternalServerError, ErrorBody{Code: CodeCascadeDelete, Message: message, Details: details})
}

// Internal writes a 500 INTERNAL_ERROR. The underlying error goes to the
// log, never to the client.
func Internal(w http.ResponseWriter, log *zap.Logger, logMsg string, err error, message string) {
	if log != nil {
		log.Error(logMsg, zap.Error(err))
	}
	write(w, http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: message})
}

// Unauthorized writes a plain 401 for unauthenticated API callers.
func Unauthorized(w http.ResponseWriter) {
	write(w, http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "sign in required"})
}

// Forbidden writes a 403 for callers lacking the required role.
func Forbidden(w http.ResponseWriter) {
	write(w, http.StatusForbidden, ErrorBody{Code: CodeForbidden, Message: "insufficient permissions"})
}
