package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/voidterrain/terrain/internal/coords"
)

// Applied is one materialized row delivered to a subscription, already
// decoded from its wire form.
type Applied struct {
	Coord  coords.XZ
	Vertex *WireVertex
	Mesh   *WireMesh
}

// ClientSubscription is the client-side handle for one open window
// subscription: Events delivers Applied rows, Errs delivers the
// on_error hook's messages.
type ClientSubscription struct {
	ID     string
	Events <-chan Applied
	Errs   <-chan string

	client *Client
}

// Unsubscribe tells the hub to stop this subscription and stops
// delivering further events locally.
func (s *ClientSubscription) Unsubscribe() {
	s.client.unsubscribe(s.ID)
}

// Client is a websocket connection to a Hub, used by the Streaming
// Coordinator in place of an in-process store.Subscription when the
// coordinator runs in a separate process from the Chunk Service.
type Client struct {
	ws *websocket.Conn

	mu     sync.Mutex
	nextID int64
	subs   map[string]*clientSub
}

type clientSub struct {
	events chan Applied
	errs   chan string
}

// Dial opens a websocket connection to a transport Hub's endpoint.
func Dial(rawURL string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse url: %w", err)
	}

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial: %w", err)
	}

	c := &Client{ws: ws, subs: make(map[string]*clientSub)}
	go c.readLoop()
	return c, nil
}

// SubscribeWindow opens a subscription over table ("chunk_vertex" or
// "chunk_mesh") filtered to bounds, matching the SQL predicate shape
// the store's subscription API expects.
func (c *Client) SubscribeWindow(table string, bounds coords.Bounds) *ClientSubscription {
	c.mu.Lock()
	c.nextID++
	id := strconv.FormatInt(c.nextID, 10)
	sub := &clientSub{events: make(chan Applied, 256), errs: make(chan string, 16)}
	c.subs[id] = sub
	c.mu.Unlock()

	c.sendJSON(ClientMessage{
		Type:           ClientMsgSubscribe,
		SubscriptionID: id,
		SQL:            subscriptionSQL(table, bounds),
	})

	return &ClientSubscription{ID: id, Events: sub.events, Errs: sub.errs, client: c}
}

func (c *Client) unsubscribe(id string) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	delete(c.subs, id)
	c.mu.Unlock()

	if ok {
		close(sub.events)
		close(sub.errs)
	}

	c.sendJSON(ClientMessage{Type: ClientMsgUnsubscribe, SubscriptionID: id})
}

// RequestChunk asks the server to run request_chunk(coord). The call is
// fire-and-forget over the wire: a failure arrives asynchronously as an
// error message with no subscription id, which dispatch discards since
// it matches no subscription. Callers notice a failure only as a row
// that never arrives, which the Streaming Coordinator retries.
func (c *Client) RequestChunk(coord coords.XZ) {
	cp := coord
	c.sendJSON(ClientMessage{Type: ClientMsgRequestChunk, Coord: &cp})
}

// Close shuts down the underlying connection.
func (c *Client) Close() error {
	return c.ws.Close()
}

func (c *Client) sendJSON(msg ClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("transport: marshal client message failed", "error", err)
		return
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error("transport: write failed", "error", err)
	}
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.closeAllSubs()
			return
		}

		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn("transport: malformed server message", "error", err)
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg ServerMessage) {
	c.mu.Lock()
	sub, ok := c.subs[msg.SubscriptionID]
	c.mu.Unlock()
	if !ok {
		return
	}

	switch msg.Type {
	case ServerMsgApplied:
		applied := Applied{Vertex: msg.Vertex, Mesh: msg.Mesh}
		if msg.Coord != nil {
			applied.Coord = *msg.Coord
		}
		select {
		case sub.events <- applied:
		default:
			log.Warn("transport: client event buffer full, dropping", "subscription_id", msg.SubscriptionID)
		}
	case ServerMsgError:
		select {
		case sub.errs <- msg.Error:
		default:
		}
	}
}

func (c *Client) closeAllSubs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, sub := range c.subs {
		close(sub.events)
		close(sub.errs)
		delete(c.subs, id)
	}
}
