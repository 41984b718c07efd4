// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package auth implements cookie-based session authentication and bitflag
// permission authorization for the kz-api HTTP surface.
package auth

import (
	"errors"

	"github.com/google/uuid"
)

// ErrDecodeSessionID is returned when a cookie value is not a well-formed
// session ID (wrong length, bad hex, misplaced hyphens).
var ErrDecodeSessionID = errors.New("malformed session ID")

// SessionID is an opaque 128-bit session identifier with UUIDv4 semantics.
// It is immutable once generated and compared byte-wise.
type SessionID uuid.UUID

// NewSessionID generates a random session ID from a cryptographically strong
// source.
func NewSessionID() (SessionID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(id), nil
}

// ParseSessionID decodes the canonical hyphenated form produced by String.
// Other representations (braces, urn prefix, missing hyphens) fail with
// ErrDecodeSessionID.
func ParseSessionID(s string) (SessionID, error) {
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return SessionID{}, ErrDecodeSessionID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, ErrDecodeSessionID
	}
	return SessionID(id), nil
}

// String returns the canonical hyphenated lowercase representation, suitable
// as a cookie value. ParseSessionID(id.String()) == id for every id.
func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16-byte representation used for persistence.
func (id SessionID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// SessionIDFromBytes reconstructs a SessionID from its 16-byte persisted form.
func SessionIDFromBytes(b []byte) (SessionID, error) {
	if len(b) != 16 {
		return SessionID{}, ErrDecodeSessionID
	}
	var id SessionID
	copy(id[:], b)
	return id, nil
}

// IsZero reports whether the ID is the all-zero value, which is never issued.
func (id SessionID) IsZero() bool {
	return id == SessionID{}
}
