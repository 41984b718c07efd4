// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

package gameserver

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/events"
	"github.com/gokz/kz-api/internal/logging"
	"github.com/gokz/kz-api/internal/task"
)

// Hub accepts game-server upgrade requests and tracks the resulting
// connections. Each accepted connection runs as one tracked task, so process
// shutdown cancels and drains them through the task manager.
type Hub struct {
	cfg      config.GameServerConfig
	registry *Registry
	tasks    *task.Manager
	bus      *events.Bus
	handler  MessageHandler
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

// NewHub creates a hub. bus and handler may be nil.
func NewHub(cfg config.GameServerConfig, registry *Registry, tasks *task.Manager, bus *events.Bus, handler MessageHandler) *Hub {
	return &Hub{
		cfg:      cfg,
		registry: registry,
		tasks:    tasks,
		bus:      bus,
		handler:  handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Game servers are not browsers; origin checks do not apply.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*Connection]struct{}),
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Names returns the names of currently connected game servers in arbitrary
// order.
func (h *Hub) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.conns))
	for conn := range h.conns {
		names = append(names, conn.Name())
	}
	return names
}

// Drain asks every live connection to close with a server-shutdown reason.
func (h *Hub) Drain() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Drain()
	}
}

// ServeHTTP authenticates the game server's API key, upgrades the socket,
// and hands the connection to a tracked task.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := h.registry.Authenticate(bearerToken(r))
	if !ok {
		metricAuthFailures.Inc()
		logging.Warn().Str("remote", r.RemoteAddr).Msg("game server auth failed")
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "invalid API key", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		logging.Warn().Err(err).Str("server", name).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(name, ws, h.cfg, h.handler)
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	handle, err := h.tasks.Go("gameserver:"+name, conn.Run)
	if err != nil {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		//nolint:errcheck // socket is being abandoned
		ws.Close()
		logging.Warn().Str("server", name).Msg("rejecting connection during shutdown")
		return
	}

	metricConnectionsTotal.Inc()
	metricConnectionsActive.Inc()
	h.publishServer(events.ServerConnected, name, "")
	logging.Info().Str("server", name).Str("remote", r.RemoteAddr).Msg("game server connected")

	go func() {
		<-handle.Done()

		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()

		metricConnectionsActive.Dec()
		h.publishServer(events.ServerDisconnected, name, conn.CloseReason().String())
	}()
}

func (h *Hub) publishServer(action, name, closeReason string) {
	if h.bus == nil {
		return
	}
	err := h.bus.PublishServer(events.ServerEvent{
		Action:      action,
		ServerName:  name,
		CloseReason: closeReason,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("publish server event failed")
	}
}

// bearerToken extracts the credential from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
