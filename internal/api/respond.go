// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package api wires the HTTP surface: routing, auth endpoints, health, and
// the game-server upgrade mount.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gokz/kz-api/internal/logging"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("write response failed")
	}
}

// errorBody is the structured error shape shared with the session
// middleware's rejections.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError writes a structured error response. Internal detail never
// reaches the body; callers log the cause separately.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: code, Message: message})
}
