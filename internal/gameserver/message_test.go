// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"errors"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"id":7,"type":"heartbeat"}`))
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if env.ID != 7 || env.Type != MessageTypeHeartbeat {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestDecodeEnvelopeNotJSON(t *testing.T) {
	if _, err := DecodeEnvelope([]byte("not json at all")); !errors.Is(err, ErrNotJSON) {
		t.Errorf("got %v, want ErrNotJSON", err)
	}
}

func TestDecodeEnvelopeMissingType(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"id":3}`))
	var invalid *InvalidMessageError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidMessageError", err)
	}
	if invalid.ID != 3 {
		t.Errorf("error ID = %d, want 3", invalid.ID)
	}
}

func TestDecodeEnvelopeUnknownType(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"id":1,"type":"teleport"}`))
	var invalid *InvalidMessageError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidMessageError", err)
	}
}

func TestEncodeEnvelope(t *testing.T) {
	data, err := EncodeEnvelope(&Envelope{ID: 1, Type: MessageTypeHelloAck})
	if err != nil {
		t.Fatalf("EncodeEnvelope failed: %v", err)
	}

	env, err := DecodeEnvelope(data)
	if err == nil {
		t.Fatalf("hello-ack decoded as inbound message: %+v", env)
	}
	// Outbound-only types are rejected on the inbound path but must still
	// serialize.
	if len(data) == 0 {
		t.Error("empty encoding")
	}
}

func TestIsHeartbeatClass(t *testing.T) {
	if !isHeartbeatClass(MessageTypeHeartbeat) || !isHeartbeatClass(MessageTypeHello) {
		t.Error("heartbeat and hello should be heartbeat-class")
	}
	if isHeartbeatClass(MessageTypeEvent) {
		t.Error("event should not be heartbeat-class")
	}
}
