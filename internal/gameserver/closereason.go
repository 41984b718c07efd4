// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"github.com/gorilla/websocket"
)

// CloseReasonKind enumerates why a connection is being closed.
type CloseReasonKind int

const (
	// CloseClientError: the client violated the protocol (bad handshake,
	// malformed frame, rate abuse).
	CloseClientError CloseReasonKind = iota

	// CloseTimeout: the client never completed the hello handshake in time.
	CloseTimeout

	// CloseClientTimeout: an established client stopped sending heartbeats.
	CloseClientTimeout

	// CloseCancelled: process shutdown cancelled the connection's task.
	CloseCancelled

	// CloseServerShutdown: the server is draining connections deliberately.
	CloseServerShutdown

	// CloseError: an internal fault; the cause is logged, never sent.
	CloseError
)

// CloseReason is the typed explanation sent in the close frame. The code and
// message mapping is fixed; existing plugin versions match on it.
type CloseReason struct {
	Kind    CloseReasonKind
	Message string
	Cause   error
}

// ClientError builds a protocol-violation close reason.
func ClientError(message string) CloseReason {
	return CloseReason{Kind: CloseClientError, Message: message}
}

// InternalError builds an internal-fault close reason. cause is logged but
// not put on the wire.
func InternalError(cause error) CloseReason {
	return CloseReason{Kind: CloseError, Cause: cause}
}

// Code returns the WebSocket close code for the reason.
func (r CloseReason) Code() int {
	switch r.Kind {
	case CloseClientError, CloseTimeout:
		return websocket.ClosePolicyViolation // 1008
	case CloseClientTimeout:
		return websocket.CloseNormalClosure // 1000
	case CloseCancelled, CloseServerShutdown:
		return websocket.CloseServiceRestart // 1012
	case CloseError:
		return websocket.CloseProtocolError // 1002
	default:
		return websocket.CloseProtocolError
	}
}

// Text returns the human-readable reason string for the close frame.
// Internal faults deliberately map to a generic message.
func (r CloseReason) Text() string {
	switch r.Kind {
	case CloseClientError:
		if r.Message != "" {
			return r.Message
		}
		return "protocol violation"
	case CloseTimeout:
		return "handshake timed out"
	case CloseClientTimeout:
		return "no heartbeat received"
	case CloseCancelled:
		return "server shutting down"
	case CloseServerShutdown:
		return "server shutting down"
	case CloseError:
		return "internal error, please report this incident"
	default:
		return "closing"
	}
}

// String names the kind for logs and metric labels.
func (r CloseReason) String() string {
	switch r.Kind {
	case CloseClientError:
		return "client_error"
	case CloseTimeout:
		return "timeout"
	case CloseClientTimeout:
		return "client_timeout"
	case CloseCancelled:
		return "cancelled"
	case CloseServerShutdown:
		return "server_shutdown"
	case CloseError:
		return "error"
	default:
		return "unknown"
	}
}
