package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// Message is the JSON envelope of every pushed frame
type Message struct {
	Type    string      `json:"type"` // "tick" or "hello"
	Payload interface{} `json:"payload"`
}

// client is one websocket connection
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes tick summaries to every connected websocket client. Clients that fall behind
// are dropped instead of slowing the tick down.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	logger     common.Logger

	mu     sync.RWMutex
	latest []byte
}

// NewHub creates a new Hub. Run must be started before clients connect.
func NewHub(logger common.Logger) *Hub {
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub event loop. It returns when ctx is cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.logger.Log("DEBUG", "Stream client connected", map[string]interface{}{"clients": len(h.clients)})
			// new clients start from the last known state
			if latest := h.latestFrame(); latest != nil {
				c.send <- latest
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// PublishTick implements game.TickPublisher
func (h *Hub) PublishTick(ctx context.Context, event game.TickEvent) {
	frame, err := json.Marshal(Message{Type: "tick", Payload: event})
	if err != nil {
		h.logger.Log("ERROR", "Failed to encode tick frame", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.latest = frame
	h.mu.Unlock()

	select {
	case h.broadcast <- frame:
	case <-h.done:
	default:
		h.logger.Log("WARNING", "Stream broadcast queue full, dropping tick frame", nil)
	}
}

func (h *Hub) latestFrame() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the stream is bound to a local address
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades an HTTP request to a websocket subscribed to the hub
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Log("WARNING", "Websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump only watches for the peer going away; clients never send commands here
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Log("DEBUG", "Stream client error", map[string]interface{}{"error": err.Error()})
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

var _ game.TickPublisher = (*Hub)(nil)
