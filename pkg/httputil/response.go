package httputil

import (
	"encoding/json"
	"net/http"
)

// APIError is the normalized error envelope returned by every handler.
type APIError struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a normalized error envelope.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, APIError{Status: status, Message: message})
}

// WriteValidationError writes a 400 with per-field errors so the client can
// surface each failure inline.
func WriteValidationError(w http.ResponseWriter, message string, fieldErrors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, APIError{
		Status:  http.StatusBadRequest,
		Message: message,
		Errors:  fieldErrors,
	})
}
