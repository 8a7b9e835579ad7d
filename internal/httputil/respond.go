// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope of every failed response.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status. Callers put "success" in v
// themselves.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// WriteError writes {"success": false, "error": msg, "details": details}.
func WriteError(w http.ResponseWriter, status int, msg, details string) {
	WriteJSON(w, status, ErrorBody{Success: false, Error: msg, Details: details})
}
