// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"time"

	"github.com/gokz/kz-api/internal/auth"
	"github.com/gokz/kz-api/internal/logging"
)

// AuthHandler serves the session endpoints. Session creation happens in the
// Steam OpenID callback, which lives outside this service; these endpoints
// cover inspection and revocation.
type AuthHandler struct {
	sessions *auth.SessionManager
}

// NewAuthHandler creates the auth endpoint handler.
func NewAuthHandler(sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// sessionResponse is the GET /auth/session body.
type sessionResponse struct {
	UserID      uint64           `json:"user_id"`
	Permissions auth.Permissions `json:"permissions"`
	ExpiresOn   time.Time        `json:"expires_on"`
}

// CurrentSession returns the authenticated principal.
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		// Unreachable when routed behind RequireAuthentication.
		respondError(w, http.StatusUnauthorized, "missing_session", "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		UserID:      session.UserID,
		Permissions: session.Permissions,
		ExpiresOn:   session.ExpiresOn,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	id, idOK := auth.SessionIDFromContext(r.Context())
	if !ok || !idOK {
		respondError(w, http.StatusUnauthorized, "missing_session", "authentication required")
		return
	}

	if err := h.sessions.Logout(r.Context(), w, id, session.UserID); err != nil {
		logging.Error().Err(err).Msg("logout failed")
		respondError(w, http.StatusInternalServerError, "store_error", "internal error, please report this incident")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll revokes every session belonging to the current user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing_session", "authentication required")
		return
	}

	count, err := h.sessions.LogoutAll(r.Context(), w, session.UserID)
	if err != nil {
		logging.Error().Err(err).Msg("logout everywhere failed")
		respondError(w, http.StatusInternalServerError, "store_error", "internal error, please report this incident")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"revoked": count})
}
