package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ayusman/natya/internal/sink"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PoseHandler broadcasts applied pose frames to websocket clients. It is
// registered as a sink so the pipeline pushes frames to it; clients
// connecting to /ws/pose receive each frame as a JSON text message.
type PoseHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewPoseHandler creates a new PoseHandler with no clients.
func NewPoseHandler() *PoseHandler {
	return &PoseHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// Name implements sink.Sink.
func (h *PoseHandler) Name() string {
	return "websocket"
}

// Send implements sink.Sink: the frame is marshaled once and written to
// every connected client. Clients whose writes fail are dropped.
func (h *PoseHandler) Send(frame *sink.Frame) error {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return nil
	}

	msg, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

// Close implements sink.Sink and disconnects every client.
func (h *PoseHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
