package session

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Client is one websocket subscribed to a single award session.
type Client struct {
	conn    *websocket.Conn
	session string
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes; gorilla connections allow one writer.
func (c *Client) SafeWriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub fans award events out to the websockets watching each session.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Client]struct{}
	log  *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: map[string]map[*Client]struct{}{}, log: log}
}

func (h *Hub) Register(sessionID string, conn *websocket.Conn) *Client {
	c := &Client{conn: conn, session: sessionID}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = map[*Client]struct{}{}
		h.subs[sessionID] = set
	}
	set[c] = struct{}{}
	h.log.Debug("award subscriber registered", zap.String("session_id", sessionID), zap.Int("subscribers", len(set)))
	return c
}

// Unregister removes c and closes its connection. It is safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set := h.subs[c.session]
	_, present := set[c]
	delete(set, c)
	if len(set) == 0 {
		delete(h.subs, c.session)
	}
	h.mu.Unlock()
	if present {
		_ = c.conn.Close()
		h.log.Debug("award subscriber unregistered", zap.String("session_id", c.session))
	}
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subs[e.SessionID]))
	for c := range h.subs[e.SessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.SafeWriteJSON(e); err != nil {
			h.log.Warn("award event write failed", zap.String("session_id", e.SessionID), zap.String("type", e.Type), zap.Error(err))
			h.Unregister(c)
		}
	}
}

func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}
