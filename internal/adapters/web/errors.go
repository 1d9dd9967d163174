package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"stock-orders/internal/app"
	"stock-orders/internal/core"
	"stock-orders/internal/wire"
)

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, status, wire.Error{
		Message:   message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, status int, body wire.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps an application error onto an HTTP status. Errors
// that match no sentinel are logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorBody(w, http.StatusBadRequest, wire.Error{
			Message:   "validation failed",
			Code:      "VALIDATION_ERROR",
			RequestID: requestIDFromContext(r.Context()),
			Errors:    verr.Problems,
		})
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	case errors.Is(err, app.ErrAgentUnavailable):
		writeError(w, r, err.Error(), "AGENT_UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		log.Printf("request %s: %v", requestIDFromContext(r.Context()), err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
