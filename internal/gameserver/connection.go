// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/logging"
)

const writeWait = 10 * time.Second

// State is the connection's protocol phase.
type State int

const (
	StateAwaitingHello State = iota
	StateEstablished
	StateClosing
	StateClosed
)

// MessageHandler receives established-phase messages for dispatch into the
// rest of the system. Handlers run on the connection's own task.
type MessageHandler interface {
	HandleMessage(ctx context.Context, conn *Connection, env *Envelope) error
}

// MessageHandlerFunc adapts a function to MessageHandler.
type MessageHandlerFunc func(ctx context.Context, conn *Connection, env *Envelope) error

// HandleMessage implements MessageHandler.
func (f MessageHandlerFunc) HandleMessage(ctx context.Context, conn *Connection, env *Envelope) error {
	return f(ctx, conn, env)
}

type inboundFrame struct {
	data []byte
	err  error
}

// Connection drives one game server's WebSocket link through the
// hello handshake, heartbeat enforcement, and closure. All mutable state is
// owned by the task running Run; the only cross-task signal is Drain.
type Connection struct {
	name    string
	ws      *websocket.Conn
	cfg     config.GameServerConfig
	handler MessageHandler

	state      State
	frames     chan inboundFrame
	readerDone chan struct{}
	limiter    *rate.Limiter

	drainOnce sync.Once
	drain     chan struct{}

	closeReason CloseReason
}

// NewConnection wraps an upgraded socket. name is the authenticated game
// server's registered name.
func NewConnection(name string, ws *websocket.Conn, cfg config.GameServerConfig, handler MessageHandler) *Connection {
	return &Connection{
		name:       name,
		ws:         ws,
		cfg:        cfg,
		handler:    handler,
		state:      StateAwaitingHello,
		frames:     make(chan inboundFrame, 1),
		readerDone: make(chan struct{}),
		drain:      make(chan struct{}),
		limiter:    rate.NewLimiter(rate.Limit(cfg.MessageRate), cfg.MessageBurst),
	}
}

// Name returns the authenticated server name.
func (c *Connection) Name() string { return c.name }

// State returns the current protocol phase. Only meaningful from the
// connection's own task or after Run has returned.
func (c *Connection) State() State { return c.state }

// CloseReason reports why the connection closed. Valid after Run returns.
func (c *Connection) CloseReason() CloseReason { return c.closeReason }

// Drain asks the connection to close with a server-shutdown reason, used when
// deliberately migrating servers off this instance. Safe to call from any
// goroutine, any number of times.
func (c *Connection) Drain() {
	c.drainOnce.Do(func() { close(c.drain) })
}

// Run executes the connection until closure. It returns nil for every
// expected termination (client disconnect, timeout, cancellation) and an
// error only for internal faults.
func (c *Connection) Run(ctx context.Context) error {
	defer close(c.readerDone)

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)

	// Reader goroutine: the only place that reads from the socket. Closing
	// the socket (done on every return path) unblocks its read; readerDone
	// unblocks its send once Run has stopped consuming frames.
	go func() {
		for {
			_, data, err := c.ws.ReadMessage()
			frame := inboundFrame{data: data, err: err}
			select {
			case c.frames <- frame:
			case <-c.readerDone:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	timeout := NewTimeout(c.cfg.HandshakeTimeout)
	defer timeout.Stop()

	for {
		select {
		case frame := <-c.frames:
			if frame.err != nil {
				return c.handleReadError(frame.err)
			}
			done, err := c.handleFrame(ctx, frame.data, timeout)
			if done {
				return err
			}

		case <-timeout.C():
			if c.state == StateAwaitingHello {
				c.close(CloseReason{Kind: CloseTimeout})
			} else {
				c.close(CloseReason{Kind: CloseClientTimeout})
			}
			return nil

		case <-c.drain:
			c.close(CloseReason{Kind: CloseServerShutdown})
			return nil

		case <-ctx.Done():
			c.close(CloseReason{Kind: CloseCancelled})
			return nil
		}
	}
}

// handleFrame processes one inbound frame. done reports whether the
// connection has closed.
func (c *Connection) handleFrame(ctx context.Context, data []byte, timeout *Timeout) (done bool, err error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		var invalid *InvalidMessageError
		switch {
		case errors.Is(err, ErrNotJSON):
			c.close(ClientError("message is not valid JSON"))
		case errors.As(err, &invalid):
			c.close(ClientError(invalid.Error()))
		default:
			c.close(ClientError("malformed message"))
		}
		return true, nil
	}

	metricMessagesReceived.WithLabelValues(env.Type).Inc()

	if c.state == StateAwaitingHello {
		if env.Type != MessageTypeHello {
			c.close(ClientError(fmt.Sprintf("expected hello, got %q", env.Type)))
			return true, nil
		}
		if err := c.acknowledgeHello(env); err != nil {
			c.close(InternalError(err))
			return true, err
		}
		timeout.Reset(c.cfg.HeartbeatInterval)
		c.state = StateEstablished
		logging.Info().Str("server", c.name).Msg("game server established")
		return false, nil
	}

	if !c.limiter.Allow() {
		c.close(ClientError("message rate exceeded"))
		return true, nil
	}

	if isHeartbeatClass(env.Type) {
		timeout.Reset(c.cfg.HeartbeatInterval)
	}

	if c.handler != nil {
		if err := c.handler.HandleMessage(ctx, c, env); err != nil {
			c.close(InternalError(err))
			return true, err
		}
	}
	return false, nil
}

// handleReadError maps a failed read to a termination. By the time the read
// side has failed no close frame can be delivered, so the socket is simply
// released.
func (c *Connection) handleReadError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.closeReason = CloseReason{Kind: CloseClientTimeout}
		logging.Info().Str("server", c.name).Msg("game server disconnected")
	} else {
		c.closeReason = ClientError("connection lost")
		logging.Warn().Err(err).Str("server", c.name).Msg("game server connection lost")
	}

	c.state = StateClosed
	metricConnectionCloses.WithLabelValues(c.closeReason.String()).Inc()

	//nolint:errcheck // best-effort release
	c.ws.Close()
	return nil
}

// acknowledgeHello replies to a valid hello with the heartbeat contract.
func (c *Connection) acknowledgeHello(hello *Envelope) error {
	var data HelloData
	if len(hello.Data) > 0 {
		//nolint:errcheck // hello payload is informational only
		json.Unmarshal(hello.Data, &data)
	}
	logging.Debug().
		Str("server", c.name).
		Str("plugin_version", data.PluginVersion).
		Str("map", data.Map).
		Msg("hello received")

	ack, err := json.Marshal(HelloAckData{
		HeartbeatInterval: c.cfg.HeartbeatInterval.Seconds(),
	})
	if err != nil {
		return &EncodeMessageError{Type: MessageTypeHelloAck, Err: err}
	}
	return c.Send(&Envelope{ID: hello.ID, Type: MessageTypeHelloAck, Data: ack})
}

// Send writes an outbound envelope. Only the connection's own task may call
// this; handlers invoked by Run qualify.
func (c *Connection) Send(env *Envelope) error {
	data, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// close sends the close frame for reason and releases the socket.
func (c *Connection) close(reason CloseReason) {
	c.state = StateClosing
	c.closeReason = reason
	metricConnectionCloses.WithLabelValues(reason.String()).Inc()

	evt := logging.Info()
	if reason.Kind == CloseError {
		evt = logging.Error().Err(reason.Cause)
	}
	evt.Str("server", c.name).
		Str("reason", reason.String()).
		Int("code", reason.Code()).
		Msg("closing game server connection")

	frame := websocket.FormatCloseMessage(reason.Code(), reason.Text())
	deadline := time.Now().Add(writeWait)
	if err := c.ws.WriteControl(websocket.CloseMessage, frame, deadline); err != nil {
		logging.Debug().Err(err).Str("server", c.name).Msg("close frame not delivered")
	}

	//nolint:errcheck // best-effort release
	c.ws.Close()
	c.state = StateClosed
}
