package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"solapay/internal/observability"
)

// feedEvent is pushed to WebSocket subscribers when a transfer is recorded.
type feedEvent struct {
	Type      string    `json:"type"`
	Signature string    `json:"signature"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Lamports  int64     `json:"amountLamports"`
	Network   string    `json:"network"`
	At        time.Time `json:"at"`
}

// Hub fans newly recorded transactions out to WebSocket subscribers so
// the dashboard's recent-transactions panel updates without polling.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends an event to every subscriber. Slow subscribers are
// dropped rather than allowed to block the write path.
func (h *Hub) Broadcast(event feedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("marshal feed event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			h.logger.Warn("dropping slow websocket subscriber")
			delete(h.clients, conn)
			close(ch)
			conn.Close()
		}
	}
	observability.SetWSSubscribers(len(h.clients))
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for conn, ch := range h.clients {
		delete(h.clients, conn)
		close(ch)
		conn.Close()
	}
	observability.SetWSSubscribers(0)
}

func (h *Hub) add(conn *websocket.Conn) (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}

	ch := make(chan []byte, 16)
	h.clients[conn] = ch
	observability.SetWSSubscribers(len(h.clients))
	return ch, true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	conn.Close()
	observability.SetWSSubscribers(len(h.clients))
}

// handleWS serves GET /ws/transactions.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ch, ok := s.hub.add(conn)
	if !ok {
		conn.Close()
		return
	}
	defer s.hub.remove(conn)

	// Discard inbound frames; the feed is one-way. Exits on close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.remove(conn)
				return
			}
		}
	}()

	for payload := range ch {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
