package streaming

import (
	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/store"
	"github.com/voidterrain/terrain/internal/transport"
)

// TransportSource adapts a websocket transport.Client into a
// ReplicationSource, for a coordinator running in a separate process
// from the Chunk Service (cmd/terrainclient).
type TransportSource struct {
	client *transport.Client
}

// NewTransportSource builds a ReplicationSource over an already-dialed
// transport client.
func NewTransportSource(c *transport.Client) *TransportSource {
	return &TransportSource{client: c}
}

func (s *TransportSource) SubscribeVertex(bounds coords.Bounds) VertexSubscription {
	sub := s.client.SubscribeWindow(store.TableChunkVertex, bounds)
	adapter := &transportVertexSub{sub: sub, out: make(chan VertexEvent, 256)}
	go adapter.run()
	return adapter
}

func (s *TransportSource) SubscribeMesh(bounds coords.Bounds) MeshSubscription {
	sub := s.client.SubscribeWindow(store.TableChunkMesh, bounds)
	adapter := &transportMeshSub{sub: sub, out: make(chan MeshEvent, 256)}
	go adapter.run()
	return adapter
}

func (s *TransportSource) RequestChunk(coord coords.XZ) {
	s.client.RequestChunk(coord)
}

type transportVertexSub struct {
	sub *transport.ClientSubscription
	out chan VertexEvent
}

func (s *transportVertexSub) run() {
	defer close(s.out)
	for applied := range s.sub.Events {
		if applied.Vertex == nil {
			continue
		}
		s.out <- VertexEvent{
			Coord: applied.Coord,
			Row:   VertexRow{Heightmap: applied.Vertex.Heightmap, Vertices: applied.Vertex.Vertices, Normals: applied.Vertex.Normals},
		}
	}
}

func (s *transportVertexSub) Events() <-chan VertexEvent { return s.out }
func (s *transportVertexSub) Unsubscribe()               { s.sub.Unsubscribe() }

type transportMeshSub struct {
	sub *transport.ClientSubscription
	out chan MeshEvent
}

func (s *transportMeshSub) run() {
	defer close(s.out)
	for applied := range s.sub.Events {
		if applied.Mesh == nil {
			continue
		}
		s.out <- MeshEvent{
			Coord: applied.Coord,
			Row:   MeshRow{Indices: applied.Mesh.Indices, Materials: applied.Mesh.Materials},
		}
	}
}

func (s *transportMeshSub) Events() <-chan MeshEvent { return s.out }
func (s *transportMeshSub) Unsubscribe()             { s.sub.Unsubscribe() }
