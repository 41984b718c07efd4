// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"sort"

	"github.com/gokz/kz-api/internal/gameserver"
)

// ServersHandler exposes the connected game-server fleet.
type ServersHandler struct {
	hub *gameserver.Hub
}

// NewServersHandler creates the game-server endpoint handler.
func NewServersHandler(hub *gameserver.Hub) *ServersHandler {
	return &ServersHandler{hub: hub}
}

// List returns the names of connected game servers. Requires the
// manage-servers permission via route middleware.
func (h *ServersHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.hub.Names()
	sort.Strings(names)
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(names),
		"servers": names,
	})
}
