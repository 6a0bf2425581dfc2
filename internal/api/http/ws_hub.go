package apihttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsEvent is the envelope pushed to scrubber UIs. Today the only event type is
// "generation", carrying a usecase.GenerationEvent payload.
type wsEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type eventClient struct {
	hub  *eventHub
	conn *websocket.Conn
	send chan []byte
}

// eventHub fans generation progress out to connected websocket clients. Slow
// clients are dropped rather than allowed to stall the broadcast loop.
type eventHub struct {
	clients    map[*eventClient]struct{}
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	done       chan struct{}
	logger     *slog.Logger
}

func newEventHub(logger *slog.Logger) *eventHub {
	return &eventHub{
		clients:    make(map[*eventClient]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *eventHub) run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				_ = client.conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(2*time.Second),
				)
				h.drop(client)
			}
			h.logger.Debug("event hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.logger.Debug("ws client connected", slog.Int("total", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("ws client disconnected", slog.Int("total", len(h.clients)))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *eventHub) drop(client *eventClient) {
	delete(h.clients, client)
	close(client.send)
}

// Close stops the hub and disconnects every client.
func (h *eventHub) Close() {
	close(h.done)
}

func (h *eventHub) clientCount() int {
	return len(h.clients)
}

// Broadcast queues a typed event for all connected clients. The event is
// dropped when the queue is full; progress events are advisory.
func (h *eventHub) Broadcast(eventType string, data any) {
	if len(h.clients) == 0 {
		return
	}
	payload, err := json.Marshal(wsEvent{Type: eventType, Data: data})
	if err != nil {
		h.logger.Error("ws marshal failed", slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; the stream is one way. Reading is still
// required to notice closes and answer pings.
func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
