// v1
// ws.go

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/GiuBlockchainDEV/hydrosim/internal/sink"
)

const clientBuffer = 16

// Hub fans each new envelope out to every connected websocket client.
// Slow clients are dropped instead of blocking the tick loop.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Broadcast implements runner.Broadcaster.
func (h *Hub) Broadcast(env sink.Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode broadcast envelope", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			h.log.Warn("websocket client too slow, dropping", "remote", conn.RemoteAddr().String())
			delete(h.clients, conn)
			close(send)
		}
	}
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()
	h.log.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	go h.writePump(conn, send)
	go h.readPump(conn)
}

func (h *Hub) writePump(conn *websocket.Conn, send chan []byte) {
	defer conn.Close()
	for msg := range send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(conn)
			return
		}
	}
}

// readPump exists to notice disconnects; inbound payloads are ignored.
func (h *Hub) readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, okClient := h.clients[conn]; okClient {
		delete(h.clients, conn)
		close(send)
		h.log.Info("websocket client disconnected", "remote", conn.RemoteAddr().String())
	}
	conn.Close()
}

// ClientCount reports the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
