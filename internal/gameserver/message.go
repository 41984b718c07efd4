// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package gameserver implements the persistent WebSocket protocol spoken by
// CS2KZ game servers: API-key authenticated upgrade, hello handshake,
// heartbeat enforcement, and typed close reasons.
package gameserver

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Message types on the wire. The first inbound message must be a hello;
// heartbeat-class messages reset the connection's deadline.
const (
	MessageTypeHello     = "hello"
	MessageTypeHelloAck  = "hello-ack"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeEvent     = "event"
)

// ErrNotJSON is returned when an inbound frame is not valid JSON at all.
var ErrNotJSON = errors.New("message is not JSON")

// InvalidMessageError is returned when a frame is JSON but not a valid
// envelope (missing or unknown type).
type InvalidMessageError struct {
	ID     uint64
	Reason string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid message %d: %s", e.ID, e.Reason)
}

// EncodeMessageError wraps an outbound serialization failure. Envelopes are
// built server-side, so this indicates a bug rather than bad input.
type EncodeMessageError struct {
	Type string
	Err  error
}

func (e *EncodeMessageError) Error() string {
	return fmt.Sprintf("encode %s message: %v", e.Type, e.Err)
}

func (e *EncodeMessageError) Unwrap() error { return e.Err }

// Envelope is the JSON wire frame. ID is a client-chosen sequence number
// echoed in acknowledgements; Data carries the type-specific payload.
type Envelope struct {
	ID   uint64          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// knownTypes lists the inbound message types this revision understands.
var knownTypes = map[string]struct{}{
	MessageTypeHello:     {},
	MessageTypeHeartbeat: {},
	MessageTypeEvent:     {},
}

// DecodeEnvelope parses an inbound frame. Malformed JSON fails with
// ErrNotJSON; structurally valid JSON with a missing or unknown type fails
// with InvalidMessageError carrying the frame's ID when one was present.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrNotJSON
	}

	if env.Type == "" {
		return nil, &InvalidMessageError{ID: env.ID, Reason: "missing type"}
	}
	if _, ok := knownTypes[env.Type]; !ok {
		return nil, &InvalidMessageError{ID: env.ID, Reason: fmt.Sprintf("unknown type %q", env.Type)}
	}
	return &env, nil
}

// EncodeEnvelope serializes an outbound frame.
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, &EncodeMessageError{Type: env.Type, Err: err}
	}
	return data, nil
}

// isHeartbeatClass reports whether receiving this message type resets the
// connection deadline.
func isHeartbeatClass(msgType string) bool {
	return msgType == MessageTypeHeartbeat || msgType == MessageTypeHello
}

// HelloData is the payload of the hello message a game server sends right
// after upgrading.
type HelloData struct {
	// PluginVersion is the version of the CS2KZ plugin on the server.
	PluginVersion string `json:"plugin_version"`

	// Map is the currently loaded map name.
	Map string `json:"map,omitempty"`
}

// HelloAckData is the payload of the server's handshake acknowledgement.
type HelloAckData struct {
	// HeartbeatInterval tells the client how often it must send
	// heartbeat-class messages, in seconds.
	HeartbeatInterval float64 `json:"heartbeat_interval"`
}
