package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"battlebee/internal/app"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames
	maxMessageSize = 512

	msgWelcome = "welcome"
)

// hub fans game events out to the websocket subscribers of one game.
type hub struct {
	mu     sync.Mutex
	conns  map[*connection]struct{}
	buffer int
	logger zerolog.Logger
}

func newHub(buffer int, logger zerolog.Logger) *hub {
	return &hub{conns: make(map[*connection]struct{}), buffer: buffer, logger: logger}
}

// broadcast never blocks: a subscriber with a full buffer misses the event.
func (h *hub) broadcast(ev app.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("type", ev.Type).Msg("send buffer full, dropping event")
		}
	}
}

// subscribe queues the welcome message ahead of any event.
func (h *hub) subscribe(c *connection, welcome []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.send <- welcome
	h.conns[c] = struct{}{}
}

// remove unsubscribes c and closes its queue. It is safe to call twice.
func (h *hub) remove(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; ok {
		delete(h.conns, c)
		close(c.send)
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		delete(h.conns, c)
		close(c.send)
	}
}

// connection is one websocket subscriber.
type connection struct {
	ws   *websocket.Conn
	hub  *hub
	send chan []byte
}

func newConnection(ws *websocket.Conn, h *hub) *connection {
	return &connection{ws: ws, hub: h, send: make(chan []byte, h.buffer)}
}

// serve runs the pumps until the peer goes away or ctx ends.
func (c *connection) serve(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go c.writePump(ctx)
	c.readPump()
}

// readPump only watches for close; subscribers have nothing to say.
func (c *connection) readPump() {
	defer func() {
		c.hub.remove(c)
		c.ws.Close()
	}()
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Msg("websocket read")
			}
			return
		}
	}
}

func (c *connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug().Err(err).Msg("websocket write")
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
