// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package api

import "net/http"

// Health reports process liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
