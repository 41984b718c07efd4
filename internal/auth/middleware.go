// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/events"
	"github.com/gokz/kz-api/internal/logging"
)

// Strictness controls how the session middleware treats requests without a
// usable session.
type Strictness int

const (
	// StrictnessLax tolerates a missing or unparseable cookie; the request
	// proceeds without a session. A cookie that decodes but resolves to an
	// invalid or expired session is still rejected.
	StrictnessLax Strictness = iota

	// StrictnessRequireAuthentication requires a valid session but performs
	// no permission check.
	StrictnessRequireAuthentication

	// StrictnessRequireAuthorization requires a valid session and runs the
	// route's AuthorizeSession strategy.
	StrictnessRequireAuthorization
)

type contextKey int

const (
	sessionDataKey contextKey = iota
	sessionIDKey
)

// SessionFromContext returns the session attached by the middleware, if any.
func SessionFromContext(ctx context.Context) (*SessionData, bool) {
	data, ok := ctx.Value(sessionDataKey).(*SessionData)
	return data, ok
}

// SessionIDFromContext returns the raw session ID attached by the middleware.
func SessionIDFromContext(ctx context.Context) (SessionID, bool) {
	id, ok := ctx.Value(sessionIDKey).(SessionID)
	return id, ok
}

// SessionManager owns the session store and cookie policy. It issues sessions
// at login, resolves them per request, and revokes them at logout.
type SessionManager struct {
	store SessionStore
	cfg   config.AuthConfig
	bus   *events.Bus
}

// NewSessionManager creates a session manager. bus may be nil in tests.
func NewSessionManager(store SessionStore, cfg config.AuthConfig, bus *events.Bus) *SessionManager {
	return &SessionManager{store: store, cfg: cfg, bus: bus}
}

// Store exposes the underlying session store for maintenance jobs.
func (m *SessionManager) Store() SessionStore {
	return m.store
}

// Middleware returns a per-route middleware applying the given strictness and
// authorization strategy.
//
// Resolution pipeline: cookie extraction, ID decode, store load, expiry
// check, then authorization. Only the missing-cookie and decode-failure steps
// are softened by StrictnessLax; an invalid or expired session always
// rejects, regardless of strictness.
func (m *SessionManager) Middleware(strictness Strictness, authorize AuthorizeSession) func(http.Handler) http.Handler {
	if authorize == nil {
		authorize = NoAuthorization{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(m.cfg.CookieName)
			if err != nil {
				if strictness == StrictnessLax {
					next.ServeHTTP(w, r)
					return
				}
				m.reject(w, r, RejectMissingCookie, nil)
				return
			}

			id, err := ParseSessionID(cookie.Value)
			if err != nil {
				if strictness == StrictnessLax {
					next.ServeHTTP(w, r)
					return
				}
				m.reject(w, r, RejectParseSessionID, err)
				return
			}

			session, err := m.store.Load(r.Context(), id)
			switch {
			case errors.Is(err, ErrSessionNotFound):
				m.reject(w, r, RejectInvalidSessionID, nil)
				return
			case err != nil:
				m.reject(w, r, RejectStoreError, err)
				return
			}

			// Expiry is re-checked here even though stores may also filter,
			// so a stale row can never authenticate.
			if session.HasExpired() {
				m.reject(w, r, RejectInvalidSessionID, nil)
				return
			}

			if m.cfg.SlidingSessions {
				m.refresh(r.Context(), id)
			}

			if strictness == StrictnessRequireAuthorization {
				if err := authorize.Authorize(r.Context(), session, r); err != nil {
					m.reject(w, r, RejectUnauthorized, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), sessionDataKey, session)
			ctx = context.WithValue(ctx, sessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// refresh extends the session's expiry. Best-effort: a failed refresh does
// not fail the request, the session simply keeps its old deadline.
func (m *SessionManager) refresh(ctx context.Context, id SessionID) {
	expiresOn := time.Now().Add(m.cfg.SessionTTL)
	if err := m.store.Refresh(ctx, id, expiresOn); err != nil {
		logging.Warn().Err(err).Msg("session refresh failed")
		return
	}
	metricSessionRefreshes.Inc()
}

func (m *SessionManager) reject(w http.ResponseWriter, r *http.Request, kind RejectionKind, err error) {
	metricSessionRejections.WithLabelValues(kind.String()).Inc()

	evt := logging.Debug()
	if kind == RejectStoreError {
		evt = logging.Error()
	}
	evt.Err(err).
		Str("reason", kind.String()).
		Str("path", r.URL.Path).
		Msg("session rejected")

	writeRejection(w, kind)
}

// Login creates a session for userID and sets the session cookie on w.
func (m *SessionManager) Login(ctx context.Context, w http.ResponseWriter, userID uint64, permissions Permissions) (SessionID, error) {
	id, err := m.store.Create(ctx, userID, permissions, m.cfg.SessionTTL)
	if err != nil {
		return SessionID{}, err
	}

	http.SetCookie(w, m.cookie(id.String(), int(m.cfg.SessionTTL.Seconds())))
	metricSessionsCreated.Inc()
	m.publishSession(events.SessionCreated, userID, id.String())

	logging.Info().Uint64("user_id", userID).Msg("session created")
	return id, nil
}

// Logout revokes the session and clears the cookie.
func (m *SessionManager) Logout(ctx context.Context, w http.ResponseWriter, id SessionID, userID uint64) error {
	if err := m.store.Revoke(ctx, id); err != nil {
		return err
	}

	http.SetCookie(w, m.cookie("", -1))
	metricSessionsRevoked.WithLabelValues("logout").Inc()
	m.publishSession(events.SessionDestroyed, userID, id.String())

	logging.Info().Uint64("user_id", userID).Msg("session revoked")
	return nil
}

// LogoutAll revokes every session belonging to userID and clears the cookie.
// Returns how many sessions were revoked.
func (m *SessionManager) LogoutAll(ctx context.Context, w http.ResponseWriter, userID uint64) (int, error) {
	count, err := m.store.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	http.SetCookie(w, m.cookie("", -1))
	metricSessionsRevoked.WithLabelValues("logout_all").Add(float64(count))
	m.publishSession(events.SessionDestroyedAll, userID, "")

	logging.Info().Uint64("user_id", userID).Int("count", count).Msg("all sessions revoked")
	return count, nil
}

func (m *SessionManager) publishSession(action string, userID uint64, sessionID string) {
	if m.bus == nil {
		return
	}
	err := m.bus.PublishSession(events.SessionEvent{
		Action:    action,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("publish session event failed")
	}
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Domain:   m.cfg.CookieDomain,
		Path:     m.cfg.CookiePath,
		MaxAge:   maxAge,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
