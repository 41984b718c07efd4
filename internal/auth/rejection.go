// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"net/http"

	"github.com/goccy/go-json"
)

// RejectionKind classifies why the session middleware refused a request.
type RejectionKind int

const (
	// RejectMissingCookie: no session cookie on a route that requires one.
	RejectMissingCookie RejectionKind = iota

	// RejectParseSessionID: the cookie value is not a well-formed session ID.
	RejectParseSessionID

	// RejectInvalidSessionID: the ID is well-formed but unknown or expired.
	RejectInvalidSessionID

	// RejectUnauthorized: valid session, insufficient permissions.
	RejectUnauthorized

	// RejectStoreError: the session store failed; nothing is revealed to the
	// client beyond a generic internal error.
	RejectStoreError
)

// String returns the kind's stable name, used in logs and metric labels.
func (k RejectionKind) String() string {
	switch k {
	case RejectMissingCookie:
		return "missing_cookie"
	case RejectParseSessionID:
		return "parse_session_id"
	case RejectInvalidSessionID:
		return "invalid_session_id"
	case RejectUnauthorized:
		return "unauthorized"
	case RejectStoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// Status maps the kind to its HTTP status code.
func (k RejectionKind) Status() int {
	switch k {
	case RejectMissingCookie:
		return http.StatusUnauthorized
	case RejectParseSessionID:
		return http.StatusBadRequest
	case RejectInvalidSessionID:
		return http.StatusUnauthorized
	case RejectUnauthorized:
		return http.StatusForbidden
	case RejectStoreError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// detail is the client-facing message. Store failures map to a generic
// incident message so internals never leak.
func (k RejectionKind) detail() string {
	switch k {
	case RejectMissingCookie:
		return "authentication required"
	case RejectParseSessionID:
		return "malformed session cookie"
	case RejectInvalidSessionID:
		return "invalid or expired session"
	case RejectUnauthorized:
		return "you do not have permission to perform this action"
	case RejectStoreError:
		return "internal error, please report this incident"
	default:
		return "internal error"
	}
}

// writeRejection sends the structured error body for a rejection.
func writeRejection(w http.ResponseWriter, kind RejectionKind) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(kind.Status())

	//nolint:errcheck // response write failures are not recoverable
	json.NewEncoder(w).Encode(map[string]string{
		"error":   kind.String(),
		"message": kind.detail(),
	})
}
