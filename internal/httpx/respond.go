// Package httpx holds the response helpers shared by the module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Stable error kinds. Declared here (and aliased by the leads package) so
// WriteError can match them without an import cycle.
var (
	ErrNotFound   = errors.New("not_found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation_error")
)

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// WriteError maps the stable error kinds to HTTP statuses: not found -> 404,
// conflict/validation -> 400, anything else -> 500.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errBody{Error: "not_found", Detail: err.Error()})
	case errors.Is(err, ErrConflict):
		WriteJSON(w, http.StatusBadRequest, errBody{Error: "conflict", Detail: err.Error()})
	case errors.Is(err, ErrValidation):
		WriteJSON(w, http.StatusBadRequest, errBody{Error: "validation_error", Detail: err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, errBody{Error: "internal", Detail: "internal error"})
	}
}
