package rpc

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hashrush-gg/hashrush-core/internal/econ"
)

// wsWriteTimeout bounds a single snapshot write. A client that cannot
// keep up is dropped rather than stalling the broadcast.
const wsWriteTimeout = 5 * time.Second

// wsHub fans economy snapshots out to websocket subscribers. The stream
// is one-way; client frames are read only to detect disconnects.
type wsHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	closed   bool
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func newWSHub(logger zerolog.Logger) *wsHub {
	return &wsHub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The JSON-RPC layer handles CORS; the stream carries only
			// public snapshot data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// handleWS upgrades a GET /ws request and subscribes the connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.remoteAllowed(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.hub.add(conn)

	// Push the current state immediately so a subscriber is never blank
	// until the next block close or sampler tick.
	s.BroadcastSnapshot(s.engine.Snapshot())

	// Reader loop: discard client frames, unsubscribe on error.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *wsHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
}

func (h *wsHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// broadcast sends a snapshot to every subscriber, dropping any that fail.
func (h *wsHub) broadcast(snap econ.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error().Err(err).Msg("snapshot marshal failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// close disconnects all subscribers and rejects future ones.
func (h *wsHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}
