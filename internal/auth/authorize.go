// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"net/http"
)

// ErrInsufficientPermissions is returned by AuthorizeSession strategies when
// a valid session lacks the permissions a route requires.
var ErrInsufficientPermissions = errors.New("insufficient permissions")

// AuthorizeSession decides whether a resolved session may access a route. It
// runs strictly after expiry checking, and only when the route's strictness
// level asks for authorization.
type AuthorizeSession interface {
	Authorize(ctx context.Context, session *SessionData, r *http.Request) error
}

// NoAuthorization accepts every authenticated session. Used for routes that
// only need identity.
type NoAuthorization struct{}

// Authorize implements AuthorizeSession.
func (NoAuthorization) Authorize(context.Context, *SessionData, *http.Request) error {
	return nil
}

// requirePermissions rejects sessions missing any of the required bits.
// Admins pass every check.
type requirePermissions struct {
	required Permissions
}

// RequirePermissions returns a strategy that succeeds iff the session's
// permissions contain all of required, or the session holds the admin bit.
func RequirePermissions(required Permissions) AuthorizeSession {
	return requirePermissions{required: required}
}

// Authorize implements AuthorizeSession.
func (a requirePermissions) Authorize(_ context.Context, session *SessionData, _ *http.Request) error {
	if session.Permissions.Contains(PermissionAdmin) {
		return nil
	}
	if !session.Permissions.Contains(a.required) {
		return ErrInsufficientPermissions
	}
	return nil
}
