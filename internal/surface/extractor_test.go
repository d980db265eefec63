package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidterrain/terrain/internal/heightfield"
)

func seed42Chunk00() *heightfield.PaddedHeightfield {
	return heightfield.NewSampler(42).Padded(0, 0)
}

func TestExtractCellCoverage(t *testing.T) {
	e := NewExtractor()
	mesh := e.Extract(seed42Chunk00(), Neighbors{})

	n := heightfield.ChunkSize
	require.Equal(t, (n+1)*(n+1), mesh.VertexCount())
	require.Equal(t, 2*n*n, mesh.TriangleCount())
}

func TestExtractBufferShapeInvariants(t *testing.T) {
	e := NewExtractor()
	mesh := e.Extract(seed42Chunk00(), Neighbors{})

	require.Equal(t, len(mesh.Positions), len(mesh.Normals))
	assert.Equal(t, 0, len(mesh.Positions)%3)
	assert.Equal(t, 0, len(mesh.Indices)%3)
	assert.Equal(t, mesh.VertexCount(), len(mesh.Materials))

	maxIdx := uint32(0)
	for _, idx := range mesh.Indices {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	assert.Less(t, int(maxIdx), mesh.VertexCount())
}

func TestExtractUnitNormals(t *testing.T) {
	e := NewExtractor()
	mesh := e.Extract(seed42Chunk00(), Neighbors{})

	for i := 0; i < mesh.VertexCount(); i++ {
		nx := mesh.Normals[i*3]
		ny := mesh.Normals[i*3+1]
		nz := mesh.Normals[i*3+2]
		length := math.Sqrt(float64(nx*nx + ny*ny + nz*nz))
		assert.InDelta(t, 1.0, length, 1e-6, "vertex %d normal length", i)
	}
}

func TestExtractAllMaterialsGrass(t *testing.T) {
	e := NewExtractor()
	mesh := e.Extract(seed42Chunk00(), Neighbors{})

	for _, m := range mesh.Materials {
		assert.Equal(t, uint32(MaterialGrass), m)
	}
}

func TestExtractFlatHeightfieldIsPlanar(t *testing.T) {
	e := NewExtractor()
	mesh := e.Extract(heightfield.NewConstantPadded(0), Neighbors{})

	for i := 0; i < mesh.VertexCount(); i++ {
		y := mesh.Positions[i*3+1]
		assert.Equal(t, float32(0), y)

		nx := mesh.Normals[i*3]
		ny := mesh.Normals[i*3+1]
		nz := mesh.Normals[i*3+2]
		assert.InDelta(t, 0, nx, 1e-6)
		assert.InDelta(t, 1, ny, 1e-6)
		assert.InDelta(t, 0, nz, 1e-6)
	}
}

func TestExtractWindingIsUpward(t *testing.T) {
	e := NewExtractor()
	gradient := heightfield.NewPaddedFromFunc(func(x, z int32) float32 {
		return float32(x) + float32(z)
	})
	mesh := e.Extract(gradient, Neighbors{})

	for tri := 0; tri < mesh.TriangleCount(); tri++ {
		i0 := mesh.Indices[tri*3]
		i1 := mesh.Indices[tri*3+1]
		i2 := mesh.Indices[tri*3+2]

		p0 := vertexAt(mesh, i0)
		p1 := vertexAt(mesh, i1)
		p2 := vertexAt(mesh, i2)

		e1 := p1.sub(p0)
		e2 := p2.sub(p0)
		cross := vec3{
			x: e1.y*e2.z - e1.z*e2.y,
			y: e1.z*e2.x - e1.x*e2.z,
			z: e1.x*e2.y - e1.y*e2.x,
		}
		assert.GreaterOrEqual(t, cross.y, 0.0, "triangle %d must face upward", tri)
	}
}

func vertexAt(m *Mesh, idx uint32) vec3 {
	o := int(idx) * 3
	return vec3{x: float64(m.Positions[o]), y: float64(m.Positions[o+1]), z: float64(m.Positions[o+2])}
}

func TestExtractStitchesAdjacentChunks(t *testing.T) {
	e := NewExtractor()
	sampler := heightfield.NewSampler(42)

	left := e.Extract(sampler.Padded(0, 0), Neighbors{})
	right := e.Extract(sampler.Padded(1, 0), Neighbors{MinusX: left})

	n := int32(heightfield.ChunkSize)
	for z := int32(0); z <= n; z++ {
		lv, ok := left.vertexAt(n, z)
		require.True(t, ok)
		rv, ok := right.vertexAt(0, z)
		require.True(t, ok)

		assert.InDelta(t, lv.x-float64(n), rv.x, 1e-6, "z=%d", z)
		assert.InDelta(t, lv.y, rv.y, 1e-6, "z=%d", z)
		assert.InDelta(t, lv.z, rv.z, 1e-6, "z=%d", z)
	}
}
