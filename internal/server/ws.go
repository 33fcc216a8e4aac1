package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/signspell/internal/app"
	"github.com/ayusman/signspell/internal/observe"
)

const (
	writeWait  = 2 * time.Second
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub pushes every app Update to connected WebSocket clients. Slow
// clients miss updates instead of stalling the pipeline.
type EventHub struct {
	metrics *observe.Metrics

	mu      sync.RWMutex
	clients map[*eventClient]struct{}
}

// NewEventHub creates an EventHub. metrics may be nil.
func NewEventHub(metrics *observe.Metrics) *EventHub {
	return &EventHub{
		metrics: metrics,
		clients: make(map[*eventClient]struct{}),
	}
}

// Publish queues u for every client.
func (h *EventHub) Publish(u app.Update) {
	msg, err := json.Marshal(u)
	if err != nil {
		log.Printf("websocket: encode update: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams updates until the client goes away.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &eventClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	defer h.unregister(c)

	go c.writeLoop()

	// Reads only detect disconnects. Clients have nothing to say.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close disconnects every client.
func (h *EventHub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

func (h *EventHub) register(c *eventClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSClients.Add(context.Background(), 1)
	}
}

func (h *EventHub) unregister(c *eventClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	c.conn.Close()
	if h.metrics != nil {
		h.metrics.WSClients.Add(context.Background(), -1)
	}
}

func (c *eventClient) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
}
