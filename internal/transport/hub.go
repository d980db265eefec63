package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/store"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub serves the websocket endpoint remote Streaming Coordinators
// connect to: one goroutine-backed conn per client, fanning out store
// row events and dispatching request_chunk calls.
type Hub struct {
	store   store.Store
	chunks  *chunkservice.Service

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewHub binds a hub to the store and chunk service it exposes.
func NewHub(st store.Store, svc *chunkservice.Service) *Hub {
	return &Hub{
		store:  st,
		chunks: svc,
		conns:  make(map[*conn]struct{}),
	}
}

// conn is one connected client: its own buffered send channel and a
// dedicated write goroutine, plus the set of live subscriptions it has
// opened through this hub.
type conn struct {
	ws       *websocket.Conn
	send     chan []byte
	closed   bool
	mu       sync.Mutex

	hub  *Hub
	subs map[string]*store.Subscription
}

// ServeWS upgrades the request and runs the connection's read loop
// until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("transport: websocket upgrade failed", "error", err)
		return
	}

	c := &conn{
		ws:   ws,
		send: make(chan []byte, 32),
		hub:  h,
		subs: make(map[string]*store.Subscription),
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()
	c.readLoop()
}

func (c *conn) readLoop() {
	defer c.teardown()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("transport: malformed client message", "error", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *conn) handle(msg ClientMessage) {
	switch msg.Type {
	case ClientMsgSubscribe:
		c.handleSubscribe(msg)
	case ClientMsgUnsubscribe:
		c.handleUnsubscribe(msg)
	case ClientMsgRequestChunk:
		c.handleRequestChunk(msg)
	default:
		log.Warn("transport: unknown client message type", "type", msg.Type)
	}
}

func (c *conn) handleSubscribe(msg ClientMessage) {
	table, bounds, err := parseSubscriptionSQL(msg.SQL)
	if err != nil {
		c.sendError(msg.SubscriptionID, err.Error())
		return
	}

	sub := c.hub.store.Subscribe(bounds)

	c.mu.Lock()
	c.subs[msg.SubscriptionID] = sub
	c.mu.Unlock()

	c.sendJSON(ServerMessage{Type: ServerMsgSubscribed, SubscriptionID: msg.SubscriptionID})
	go c.forward(msg.SubscriptionID, table, sub)
}

func (c *conn) handleUnsubscribe(msg ClientMessage) {
	c.mu.Lock()
	sub, ok := c.subs[msg.SubscriptionID]
	delete(c.subs, msg.SubscriptionID)
	c.mu.Unlock()

	if ok {
		sub.Unsubscribe()
	}
}

func (c *conn) handleRequestChunk(msg ClientMessage) {
	if msg.Coord == nil {
		c.sendError("", "request_chunk: missing coord")
		return
	}
	coord := *msg.Coord

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.hub.chunks.RequestChunk(ctx, coord); err != nil {
			log.Error("transport: request_chunk failed", "coord", coord.String(), "error", err)
			c.sendError("", "request_chunk failed, retry later")
		}
	}()
}

// forward relays every event from sub onto the connection as an applied
// row message, fetching the full row so the client never has to make a
// second trip to materialize it.
func (c *conn) forward(subID, table string, sub *store.Subscription) {
	ctx := context.Background()
	for ev := range sub.Events {
		msg := ServerMessage{
			Type:           ServerMsgApplied,
			SubscriptionID: subID,
			Table:          table,
			Coord:          &ev.Coord,
		}

		switch table {
		case store.TableChunkVertex:
			row, err := c.hub.store.GetChunkVertex(ctx, ev.Coord)
			if err != nil {
				continue
			}
			msg.Vertex = &WireVertex{Heightmap: row.Heightmap, Vertices: row.Vertices, Normals: row.Normals}
		case store.TableChunkMesh:
			row, err := c.hub.store.GetChunkMesh(ctx, ev.Coord)
			if err != nil {
				continue
			}
			msg.Mesh = &WireMesh{Indices: row.Indices, Materials: row.Materials}
		}

		c.sendJSON(msg)
	}
}

func (c *conn) sendError(subID, message string) {
	c.sendJSON(ServerMessage{Type: ServerMsgError, SubscriptionID: subID, Error: message})
}

func (c *conn) sendJSON(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("transport: marshal server message failed", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn("transport: client send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *conn) writeLoop() {
	for data := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *conn) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	close(c.send)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	c.hub.mu.Lock()
	delete(c.hub.conns, c)
	c.hub.mu.Unlock()

	c.ws.Close()
}
