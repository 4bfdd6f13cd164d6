package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

const (
	maxStreamClients = 16
	writeWait        = 10 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// streamMessage is one frame sent to websocket clients.
type streamMessage struct {
	Type string      `json:"type"`
	Kind notify.Kind `json:"kind"`
	At   world.Point `json:"at"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans notifications out to websocket clients. It is a notify.Sink and
// never blocks the caller: slow clients are dropped.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[*client]bool),
	}
}

// Run delivers broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dispatch implements notify.Sink.
func (h *Hub) Dispatch(kind notify.Kind, at world.Point) {
	b, err := json.Marshal(streamMessage{Type: "notification", Kind: kind, At: at})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- b:
	default:
		slog.Debug("stream broadcast dropped", "kind", kind)
	}
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	if h.Clients() >= maxStreamClients {
		http.Error(w, "too many stream clients", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 64)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	slog.Info("stream client connected", "client", c.id)

	go c.writer()
	go c.reader(h)
}

// reader discards client frames and unregisters on disconnect.
func (c *client) reader(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
		slog.Info("stream client disconnected", "client", c.id)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writer() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}
