// Package streaming implements the client-side Streaming Coordinator:
// it watches the camera, maintains a subscription window and a dirty
// set of chunk coordinates, and uploads freshly replicated meshes to
// the renderer exactly once.
//
// The coordinator is written against a small ReplicationSource
// interface rather than internal/store or internal/transport
// directly, so the same tick logic drives both an in-process store
// (single-process tests, a combined server+client binary) and a
// websocket-connected remote client.
package streaming

import "github.com/voidterrain/terrain/internal/coords"

// VertexRow mirrors the chunk_vertex columns the coordinator needs.
type VertexRow struct {
	Heightmap []float32
	Vertices  []float32
	Normals   []float32
}

// MeshRow mirrors the chunk_mesh columns the coordinator needs.
type MeshRow struct {
	Indices   []uint32
	Materials []uint32
}

// VertexEvent is one applied chunk_vertex row.
type VertexEvent struct {
	Coord coords.XZ
	Row   VertexRow
}

// MeshEvent is one applied chunk_mesh row.
type MeshEvent struct {
	Coord coords.XZ
	Row   MeshRow
}

// VertexSubscription streams applied chunk_vertex rows for a window.
type VertexSubscription interface {
	Events() <-chan VertexEvent
	Unsubscribe()
}

// MeshSubscription streams applied chunk_mesh rows for a window.
type MeshSubscription interface {
	Events() <-chan MeshEvent
	Unsubscribe()
}

// ReplicationSource is everything the coordinator needs from the
// replicated store: open a window subscription on each table, and
// fire the request_chunk procedure. It deliberately carries no
// store-specific types so the coordinator stays transport-agnostic.
type ReplicationSource interface {
	SubscribeVertex(bounds coords.Bounds) VertexSubscription
	SubscribeMesh(bounds coords.Bounds) MeshSubscription
	RequestChunk(coord coords.XZ)
}
