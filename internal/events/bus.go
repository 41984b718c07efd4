// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Package events is the in-process event bus. Session lifecycle and
// game-server connection changes are published here so interested components
// (metrics, future persistence consumers) can subscribe without coupling to
// the producers.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
)

// Topics published on the bus.
const (
	TopicSessions    = "auth.sessions"
	TopicGameServers = "gameserver.connections"
)

// Session event actions.
const (
	SessionCreated      = "created"
	SessionDestroyed    = "destroyed"
	SessionDestroyedAll = "destroyed_all"
)

// Game-server connection actions.
const (
	ServerConnected    = "connected"
	ServerDisconnected = "disconnected"
)

// SessionEvent describes a change to a user session.
type SessionEvent struct {
	Action    string    `json:"action"`
	UserID    uint64    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerEvent describes a game-server connection change.
type ServerEvent struct {
	Action      string    `json:"action"`
	ServerName  string    `json:"server_name"`
	CloseReason string    `json:"close_reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Bus wraps a watermill gochannel Pub/Sub. Publishing never blocks the caller
// beyond channel delivery to in-process subscribers.
type Bus struct {
	pubsub *gochannel.GoChannel
	mu     sync.RWMutex
	closed bool
}

// NewBus creates an in-process event bus.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// Subscribe returns a channel of messages for the given topic. The channel is
// closed when ctx is canceled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// PublishSession publishes a session lifecycle event.
func (b *Bus) PublishSession(ev SessionEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return b.publish(TopicSessions, ev)
}

// PublishServer publishes a game-server connection event.
func (b *Bus) PublishServer(ev ServerEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return b.publish(TopicGameServers, ev)
}

func (b *Bus) publish(topic string, payload any) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is closed")
	}
	b.mu.RUnlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close shuts down the bus and closes all subscriber channels. Safe to call
// more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.pubsub.Close()
}
