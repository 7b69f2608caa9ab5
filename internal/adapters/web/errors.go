package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"despensa/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with an explicit status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps core sentinel errors to HTTP responses. Unknown
// errors become 500 with a generic message; the detail stays in the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalid):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrDuplicateName):
		writeError(w, r, "an item with this name already exists", "DUPLICATE", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicatePhone):
		writeError(w, r, "a recipient with this phone already exists", "DUPLICATE", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicateUsername):
		writeError(w, r, "username already taken", "DUPLICATE", http.StatusConflict)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, "the record changed concurrently, retry", "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrNoRecipients):
		writeError(w, r, "no active recipients registered", "NO_RECIPIENTS", http.StatusUnprocessableEntity)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
