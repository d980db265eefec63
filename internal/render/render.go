// Package render defines the boundary between the Streaming Coordinator
// and the render engine it feeds. The engine itself is out of scope;
// this package exists so the coordinator has a real interface to call
// and tests have a real double to assert against.
package render

import (
	"fmt"

	"github.com/voidterrain/terrain/internal/coords"
)

// Mesh is the renderer-ready form of an extracted chunk: flat
// position/normal triples and a triangle index buffer, already in
// chunk-local space.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// Renderer is the subset of the render engine the coordinator drives:
// spawning a chunk's mesh exactly once at identity transform. Eviction
// of out-of-window chunks is the renderer's own business, not the
// coordinator's, so there is no corresponding mandatory despawn call in
// the materialization loop; DespawnChunk exists for renderers that want
// to act on it anyway (the in-memory fake used in tests does).
type Renderer interface {
	SpawnChunk(coord coords.XZ, mesh Mesh)
	DespawnChunk(coord coords.XZ)
}

// EntityName formats a chunk's entity name, TerrainChunk_x_z. The
// coordinator does not call it: SpawnChunk receives only the coordinate
// and the mesh.
func EntityName(coord coords.XZ) string {
	return fmt.Sprintf("TerrainChunk_%d_%d", coord.X, coord.Z)
}
