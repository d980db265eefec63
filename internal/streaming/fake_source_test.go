package streaming

import (
	"sync"

	"github.com/voidterrain/terrain/internal/coords"
)

type fakeVertexSub struct {
	ch           chan VertexEvent
	bounds       coords.Bounds
	unsubscribed bool
}

func (s *fakeVertexSub) Events() <-chan VertexEvent { return s.ch }
func (s *fakeVertexSub) Unsubscribe()               { s.unsubscribed = true }

type fakeMeshSub struct {
	ch           chan MeshEvent
	bounds       coords.Bounds
	unsubscribed bool
}

func (s *fakeMeshSub) Events() <-chan MeshEvent { return s.ch }
func (s *fakeMeshSub) Unsubscribe()             { s.unsubscribed = true }

// fakeSource is a deterministic, test-controlled ReplicationSource: it
// never generates events on its own, so tests push rows directly onto
// the most recently opened subscription.
type fakeSource struct {
	mu         sync.Mutex
	vertexSubs []*fakeVertexSub
	meshSubs   []*fakeMeshSub
	requested  []coords.XZ
}

func newFakeSource() *fakeSource {
	return &fakeSource{}
}

func (f *fakeSource) SubscribeVertex(bounds coords.Bounds) VertexSubscription {
	sub := &fakeVertexSub{ch: make(chan VertexEvent, 256), bounds: bounds}
	f.mu.Lock()
	f.vertexSubs = append(f.vertexSubs, sub)
	f.mu.Unlock()
	return sub
}

func (f *fakeSource) SubscribeMesh(bounds coords.Bounds) MeshSubscription {
	sub := &fakeMeshSub{ch: make(chan MeshEvent, 256), bounds: bounds}
	f.mu.Lock()
	f.meshSubs = append(f.meshSubs, sub)
	f.mu.Unlock()
	return sub
}

func (f *fakeSource) RequestChunk(coord coords.XZ) {
	f.mu.Lock()
	f.requested = append(f.requested, coord)
	f.mu.Unlock()
}

func (f *fakeSource) requestCount(coord coords.XZ) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requested {
		if c == coord {
			n++
		}
	}
	return n
}

func (f *fakeSource) latestVertexSub() *fakeVertexSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vertexSubs[len(f.vertexSubs)-1]
}

func (f *fakeSource) latestMeshSub() *fakeMeshSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meshSubs[len(f.meshSubs)-1]
}
