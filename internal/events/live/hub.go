package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avstrong/resort/internal/booking"
	"github.com/avstrong/resort/internal/logger"
)

const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes booking events to connected admin dashboards.
type Hub struct {
	mu       sync.Mutex
	l        *logger.Logger
	upgrader websocket.Upgrader
	clients  map[*client]struct{}
}

func New(l *logger.Logger, allowedOrigins []string) *Hub {
	//nolint:exhaustruct
	h := &Hub{
		l:       l,
		clients: make(map[*client]struct{}),
	}

	//nolint:exhaustruct
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}

			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}

			return false
		},
	}

	return h
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.LogWarnf("Live feed upgrade failed: %v", err.Error())

		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.l.LogInfo("Live feed client connected from %v", r.RemoteAddr)

	go h.writeLoop(c)

	// Incoming frames are ignored; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(c)
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)

			return
		}
	}

	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Publish broadcasts the event. Clients that cannot keep up are disconnected.
func (h *Hub) Publish(_ context.Context, event booking.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %v: %w", event.ID, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.l.LogWarnf("Live feed client too slow, disconnecting")
			delete(h.clients, c)
			close(c.send)
			_ = c.conn.Close()
		}
	}

	return nil
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
