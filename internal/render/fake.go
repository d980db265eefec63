package render

import (
	"sync"

	"github.com/voidterrain/terrain/internal/coords"
)

// Fake is an in-memory Renderer standing in for the out-of-scope
// render engine. Tests use it to assert that the coordinator spawns
// each chunk's mesh exactly once.
type Fake struct {
	mu      sync.Mutex
	spawned map[coords.XZ]Mesh
	spawns  []coords.XZ
}

// NewFake constructs an empty fake renderer.
func NewFake() *Fake {
	return &Fake{spawned: make(map[coords.XZ]Mesh)}
}

func (f *Fake) SpawnChunk(coord coords.XZ, mesh Mesh) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawned[coord] = mesh
	f.spawns = append(f.spawns, coord)
}

func (f *Fake) DespawnChunk(coord coords.XZ) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.spawned, coord)
}

// SpawnCount returns how many times SpawnChunk was called for coord,
// used to assert the upload-exactly-once invariant.
func (f *Fake) SpawnCount(coord coords.XZ) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.spawns {
		if c == coord {
			n++
		}
	}
	return n
}

// Has reports whether coord currently has a spawned mesh.
func (f *Fake) Has(coord coords.XZ) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.spawned[coord]
	return ok
}

// MeshFor returns the last mesh spawned for coord.
func (f *Fake) MeshFor(coord coords.XZ) (Mesh, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.spawned[coord]
	return m, ok
}

// Len returns the number of distinct coordinates currently spawned.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spawned)
}
