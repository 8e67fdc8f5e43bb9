package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// ErrHubClosed is returned when a connection arrives after Run has stopped.
var ErrHubClosed = errors.New("websocket hub closed")

// Event is the frame pushed to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	userID  string
	payload []byte
}

// Client is one open connection subscribed to a single user's events.
type Client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans events out to every connection of the addressed user.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	register   chan *Client
	unregister chan *Client
	outbound   chan envelope
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub builds a hub. An empty allowedOrigins list accepts any origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan envelope, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]struct{}),
	}
}

// Run dispatches until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", zap.String("user_id", c.userID))
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.outbound:
			h.mu.Lock()
			for c := range h.clients[msg.userID] {
				select {
				case c.send <- msg.payload:
				default:
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug("websocket client disconnected", zap.String("user_id", c.userID))
}

// Publish queues an event for userID. It never blocks and reports whether the event was queued.
func (h *Hub) Publish(userID string, event Event) bool {
	if h == nil || userID == "" {
		return false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("websocket event encode failed", zap.Error(err))
		return false
	}
	select {
	case h.outbound <- envelope{userID: userID, payload: payload}:
		return true
	default:
		h.logger.Warn("websocket outbound queue full", zap.String("user_id", userID))
		return false
	}
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Serve upgrades the request and subscribes the connection to userID's events.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubClosed
	}
	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
