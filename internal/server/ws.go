package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/wastesort/internal/game"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// liveMessage is one game-state update sent to WebSocket clients.
type liveMessage struct {
	Type      string        `json:"type"`
	Snapshot  game.Snapshot `json:"snapshot"`
	Timestamp int64         `json:"timestamp"`
}

// LiveHandler broadcasts game snapshots to WebSocket clients.
type LiveHandler struct {
	feed     *Feed
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stop     chan struct{}
	once     sync.Once
}

// NewLiveHandler creates a LiveHandler and starts its broadcast loop.
func NewLiveHandler(feed *Feed, interval time.Duration) *LiveHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	h := &LiveHandler{
		feed:     feed,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		stop:     make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *LiveHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop.
func (h *LiveHandler) Close() {
	h.once.Do(func() { close(h.stop) })
}

// broadcast sends each new snapshot to all clients, at most once per interval.
func (h *LiveHandler) broadcast() {
	wake, cancel := h.feed.Subscribe()
	defer cancel()

	var sent uint64
	for {
		select {
		case <-h.stop:
			return
		case <-wake:
		}

		snap, seq := h.feed.Snapshot()
		if seq == sent || h.Clients() == 0 {
			continue
		}
		sent = seq

		msg, err := json.Marshal(liveMessage{
			Type:      "snapshot",
			Snapshot:  snap,
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			log.Printf("snapshot encode error: %v", err)
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()

		select {
		case <-h.stop:
			return
		case <-time.After(h.interval):
		}
	}
}
