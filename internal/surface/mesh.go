// Package surface implements the dual-contouring extractor: it turns a
// padded heightfield into a triangle mesh, placing one vertex per cell
// at the QEF least-squares intersection of its corner tangent planes.
package surface

import "github.com/voidterrain/terrain/internal/heightfield"

// cellGridDim is the side length of the (CHUNK_SIZE+1)^2 cell vertex
// grid the extractor walks.
const cellGridDim = heightfield.ChunkSize + 1

// Mesh is the flat buffer layout the store and renderer both consume:
// positions and normals are tightly packed (x,y,z) triples in
// chunk-local space, indices reference triangles, and materials carries
// one tag per vertex.
type Mesh struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
	Materials []uint32

	// cellVertex maps cell (x,z) to the index of its vertex in
	// Positions/Normals, row-major over the (ChunkSize+1)^2 grid. It is
	// unexported because only this package's stitching logic and tests
	// need direct cell addressing; everything else consumes the flat
	// buffers.
	cellVertex []int32
}

func newMesh() *Mesh {
	n := cellGridDim * cellGridDim
	return &Mesh{
		Positions:  make([]float32, 0, n*3),
		Normals:    make([]float32, 0, n*3),
		Indices:    make([]uint32, 0, 2*heightfield.ChunkSize*heightfield.ChunkSize*3),
		Materials:  make([]uint32, 0, n),
		cellVertex: make([]int32, n),
	}
}

func (m *Mesh) cellIndex(x, z int32) int {
	return int(z*cellGridDim + x)
}

// vertexAt returns the position of the vertex placed at cell (x, z),
// used by stitching to snap a neighbor's boundary vertex into this
// chunk's frame.
func (m *Mesh) vertexAt(x, z int32) (vec3, bool) {
	if x < 0 || x >= cellGridDim || z < 0 || z >= cellGridDim {
		return vec3{}, false
	}
	idx := m.cellVertex[m.cellIndex(x, z)]
	o := int(idx) * 3
	return vec3{x: float64(m.Positions[o]), y: float64(m.Positions[o+1]), z: float64(m.Positions[o+2])}, true
}

func (m *Mesh) addVertex(x, z int32, v, n vec3, mat Material) int32 {
	idx := int32(len(m.Positions) / 3)
	m.Positions = append(m.Positions, float32(v.x), float32(v.y), float32(v.z))
	m.Normals = append(m.Normals, float32(n.x), float32(n.y), float32(n.z))
	m.Materials = append(m.Materials, uint32(mat))
	m.cellVertex[m.cellIndex(x, z)] = idx
	return idx
}

// NewMeshFromBuffers reconstructs a Mesh from flat position/normal
// buffers previously produced by Extract (e.g. read back from the
// store). It relies on Extract's guarantee that vertices are appended
// in row-major cell order with no cell skipped, so cell (x,z) is always
// at flat index z*cellGridDim+x.
func NewMeshFromBuffers(positions, normals []float32) *Mesh {
	n := cellGridDim * cellGridDim
	cellVertex := make([]int32, n)
	for i := range cellVertex {
		cellVertex[i] = int32(i)
	}
	return &Mesh{
		Positions:  positions,
		Normals:    normals,
		cellVertex: cellVertex,
	}
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
