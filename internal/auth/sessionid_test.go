// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestSessionIDRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID failed: %v", err)
		}

		encoded := id.String()
		if len(encoded) != 36 {
			t.Fatalf("encoded length = %d, want 36", len(encoded))
		}
		if encoded != strings.ToLower(encoded) {
			t.Fatalf("encoded form not lowercase: %q", encoded)
		}

		decoded, err := ParseSessionID(encoded)
		if err != nil {
			t.Fatalf("ParseSessionID(%q) failed: %v", encoded, err)
		}
		if decoded != id {
			t.Fatalf("round trip mismatch: %v != %v", decoded, id)
		}
	}
}

func TestParseSessionIDMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "abc"},
		{"too long", "00000000-0000-0000-0000-0000000000000"},
		{"no hyphens", "00000000000000000000000000000000"},
		{"wrong hyphen positions", "0000000-00000-0000-0000-000000000000"},
		{"invalid hex", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"},
		{"braced", "{00000000-0000-0000-0000-000000000000}"},
		{"urn prefix", "urn:uuid:00000000-0000-0000-0000-000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionID(tt.input); !errors.Is(err, ErrDecodeSessionID) {
				t.Errorf("ParseSessionID(%q) = %v, want ErrDecodeSessionID", tt.input, err)
			}
		})
	}
}

func TestSessionIDBytesRoundTrip(t *testing.T) {
	id, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}

	b := id.Bytes()
	if len(b) != 16 {
		t.Fatalf("Bytes length = %d, want 16", len(b))
	}

	restored, err := SessionIDFromBytes(b)
	if err != nil {
		t.Fatalf("SessionIDFromBytes failed: %v", err)
	}
	if restored != id {
		t.Fatalf("byte round trip mismatch: %v != %v", restored, id)
	}

	if _, err := SessionIDFromBytes([]byte{1, 2, 3}); !errors.Is(err, ErrDecodeSessionID) {
		t.Errorf("short byte slice accepted, want ErrDecodeSessionID")
	}
}

func TestSessionIDUniqueness(t *testing.T) {
	seen := make(map[SessionID]struct{})
	for i := 0; i < 1000; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID failed: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session ID generated: %v", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSessionIDIsZero(t *testing.T) {
	if !(SessionID{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	id, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}
	if id.IsZero() {
		t.Error("generated ID should not report IsZero")
	}
}
