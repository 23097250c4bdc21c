// Package httputil defines the JSON envelope the VaultString gateway speaks.
// The client decodes it; the gatewaytest fake server writes it.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Response is the standard JSON response envelope used by the gateway.
type Response struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorResponse  `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a 2xx envelope wrapping the given payload.
func WriteData(w http.ResponseWriter, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "encode response")
		return
	}
	WriteJSON(w, status, Response{Data: raw})
}

// WriteError writes an error envelope with the given status, code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message},
	})
}
