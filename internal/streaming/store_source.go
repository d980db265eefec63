package streaming

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/store"
)

// StoreSource adapts an in-process store.Store and chunkservice.Service
// into a ReplicationSource, for a coordinator running in the same
// process as the Chunk Service (a combined binary, or tests).
type StoreSource struct {
	store  store.Store
	chunks *chunkservice.Service
}

// NewStoreSource builds a ReplicationSource over an already-open store
// and chunk service.
func NewStoreSource(st store.Store, svc *chunkservice.Service) *StoreSource {
	return &StoreSource{store: st, chunks: svc}
}

func (s *StoreSource) SubscribeVertex(bounds coords.Bounds) VertexSubscription {
	sub := s.store.Subscribe(bounds)
	adapter := &storeVertexSub{sub: sub, store: s.store, out: make(chan VertexEvent, 256)}
	go adapter.run()
	return adapter
}

func (s *StoreSource) SubscribeMesh(bounds coords.Bounds) MeshSubscription {
	sub := s.store.Subscribe(bounds)
	adapter := &storeMeshSub{sub: sub, store: s.store, out: make(chan MeshEvent, 256)}
	go adapter.run()
	return adapter
}

// RequestChunk fires request_chunk asynchronously, matching the
// wire-level behavior of a remote client: the coordinator never
// blocks a tick waiting on it.
func (s *StoreSource) RequestChunk(coord coords.XZ) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.chunks.RequestChunk(ctx, coord); err != nil {
			log.Warn("streaming: request_chunk failed", "coord", coord.String(), "error", err)
		}
	}()
}

type storeVertexSub struct {
	sub   *store.Subscription
	store store.Store
	out   chan VertexEvent
}

func (s *storeVertexSub) run() {
	defer close(s.out)
	for ev := range s.sub.Events {
		if ev.Table != store.TableChunkVertex {
			continue
		}
		row, err := s.store.GetChunkVertex(context.Background(), ev.Coord)
		if err != nil {
			continue
		}
		s.out <- VertexEvent{Coord: ev.Coord, Row: VertexRow{Heightmap: row.Heightmap, Vertices: row.Vertices, Normals: row.Normals}}
	}
}

func (s *storeVertexSub) Events() <-chan VertexEvent { return s.out }
func (s *storeVertexSub) Unsubscribe()               { s.sub.Unsubscribe() }

type storeMeshSub struct {
	sub   *store.Subscription
	store store.Store
	out   chan MeshEvent
}

func (s *storeMeshSub) run() {
	defer close(s.out)
	for ev := range s.sub.Events {
		if ev.Table != store.TableChunkMesh {
			continue
		}
		row, err := s.store.GetChunkMesh(context.Background(), ev.Coord)
		if err != nil {
			continue
		}
		s.out <- MeshEvent{Coord: ev.Coord, Row: MeshRow{Indices: row.Indices, Materials: row.Materials}}
	}
}

func (s *storeMeshSub) Events() <-chan MeshEvent { return s.out }
func (s *storeMeshSub) Unsubscribe()             { s.sub.Unsubscribe() }
