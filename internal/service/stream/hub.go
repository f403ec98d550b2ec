package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	domrepo "SimPulse/internal/domain/repository"
	applogger "SimPulse/pkg/logger"
)

const (
	writeWait      = 5 * time.Second
	pingPeriod     = 25 * time.Second
	pongWait       = 35 * time.Second
	clientSendBuf  = 128
	maxInboundSize = 512
)

// envelope is the wire shape of every pushed message.
type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   int64       `json:"at"`
}

// Hub fans engine events out to connected WebSocket observers. Delivery is
// best effort: a client that cannot keep up is disconnected, never waited on.
type Hub struct {
	log      *applogger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *applogger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// demo surface, same-origin checks handled upstream
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast pushes one event to every connected client without blocking the
// caller. Marshal errors drop the event.
func (h *Hub) Broadcast(event string, payload interface{}) {
	b, err := json.Marshal(envelope{Type: event, Data: payload, At: time.Now().UnixMilli()})
	if err != nil {
		h.log.Warn("broadcast marshal failed", applogger.String("event", event), applogger.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// slow consumer, close asynchronously to avoid holding the lock
			go h.drop(c)
		}
	}
}

// Serve upgrades the request and runs the connection until it dies.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, clientSendBuf)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("observer connected", applogger.Int("clients", n))

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// writePump owns all writes on the connection, including pings.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(c)
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the surface is push-only. Reading keeps
// pong handling alive and detects the close.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var _ domrepo.Broadcaster = (*Hub)(nil)
