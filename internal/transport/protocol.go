// Package transport carries replicated row events and procedure calls
// between the Chunk Service and remote Streaming Coordinators over a
// websocket connection. It is the wire analogue of the in-process
// store.Subscription channel: a client opens a subscription with SQL
// predicate text, which the hub parses into the bounds store.Subscribe
// takes, and
// receives applied-row and error events exactly like the on_applied /
// on_error hooks of the store's subscription handle.
package transport

import "github.com/voidterrain/terrain/internal/coords"

// ClientMessage is everything a connected client can send.
type ClientMessage struct {
	Type string `json:"type"`

	// Subscribe / Unsubscribe
	SubscriptionID string `json:"subscription_id,omitempty"`
	SQL            string `json:"sql,omitempty"`

	// RequestChunk
	Coord *coords.XZ `json:"coord,omitempty"`
}

const (
	ClientMsgSubscribe    = "subscribe"
	ClientMsgUnsubscribe  = "unsubscribe"
	ClientMsgRequestChunk = "request_chunk"
)

// ServerMessage is everything the hub can push to a client.
type ServerMessage struct {
	Type string `json:"type"`

	SubscriptionID string `json:"subscription_id,omitempty"`
	Table          string `json:"table,omitempty"`
	Coord          *coords.XZ `json:"coord,omitempty"`

	Vertex *WireVertex `json:"vertex,omitempty"`
	Mesh   *WireMesh   `json:"mesh,omitempty"`

	Error string `json:"error,omitempty"`
}

const (
	ServerMsgSubscribed = "subscribed"
	ServerMsgApplied    = "applied"
	ServerMsgError      = "error"
)

// WireVertex mirrors a chunk_vertex row.
type WireVertex struct {
	Heightmap []float32 `json:"heightmap"`
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
}

// WireMesh mirrors a chunk_mesh row.
type WireMesh struct {
	Indices   []uint32 `json:"indices"`
	Materials []uint32 `json:"materials"`
}
