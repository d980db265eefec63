package surface

import "github.com/voidterrain/terrain/internal/heightfield"

// stitchTolerance bounds how far a neighbor's boundary vertex may sit
// from this chunk's independently-solved QEF vertex before the two are
// snapped together. Since both chunks sample the same padded corner
// heights at a shared edge, the two solves are normally within noise of
// each other; the tolerance exists to reject a neighbor hint that
// diverged for some other reason.
const stitchTolerance = 0.5

// Neighbors carries the already-built meshes of up to four adjacent
// chunks, used only to snap this chunk's boundary vertices onto
// positions the neighbor already committed to. A nil field means that
// neighbor has not been generated yet; the boundary is then emitted
// standalone and reconciles once the neighbor exists.
type Neighbors struct {
	MinusX, PlusX *Mesh
	MinusZ, PlusZ *Mesh
}

// Extractor runs dual contouring over a padded heightfield. It is
// stateless and safe to share across goroutines.
type Extractor struct{}

// NewExtractor constructs an Extractor. There is no per-instance state;
// the constructor exists so callers hold a shared value the same way
// they hold a shared Sampler.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract consumes a padded heightfield for one chunk and produces its
// mesh. neighbors may be the zero value when no adjacent chunk has been
// generated yet.
func (e *Extractor) Extract(padded *heightfield.PaddedHeightfield, neighbors Neighbors) *Mesh {
	const n = heightfield.ChunkSize
	mesh := newMesh()

	for z := int32(0); z <= n; z++ {
		for x := int32(0); x <= n; x++ {
			corners := cellCorners(padded, x, z)
			v, normal := solveQEF(corners)

			minH, maxH := corners[0].p.y, corners[0].p.y
			for _, c := range corners[1:] {
				if c.p.y < minH {
					minH = c.p.y
				}
				if c.p.y > maxH {
					maxH = c.p.y
				}
			}

			if v.x < float64(x) {
				v.x = float64(x)
			}
			if v.x > float64(x+1) {
				v.x = float64(x + 1)
			}
			if v.z < float64(z) {
				v.z = float64(z)
			}
			if v.z > float64(z+1) {
				v.z = float64(z + 1)
			}
			if v.y < minH {
				v.y = minH
			}
			if v.y > maxH {
				v.y = maxH
			}

			v = snapBoundary(v, x, z, n, neighbors)

			mesh.addVertex(x, z, v, normal, MaterialGrass)
		}
	}

	for z := int32(0); z < n; z++ {
		for x := int32(0); x < n; x++ {
			v00 := uint32(mesh.cellVertex[mesh.cellIndex(x, z)])
			v10 := uint32(mesh.cellVertex[mesh.cellIndex(x+1, z)])
			v01 := uint32(mesh.cellVertex[mesh.cellIndex(x, z+1)])
			v11 := uint32(mesh.cellVertex[mesh.cellIndex(x+1, z+1)])

			mesh.Indices = append(mesh.Indices, v00, v11, v10)
			mesh.Indices = append(mesh.Indices, v00, v01, v11)
		}
	}

	return mesh
}

// snapBoundary replaces v with a neighbor's already-committed position,
// converted into this chunk's local frame, when one is available and
// within tolerance.
func snapBoundary(v vec3, x, z, n int32, neighbors Neighbors) vec3 {
	try := func(nm *Mesh, nx, nz int32, offset vec3) vec3 {
		if nm == nil {
			return v
		}
		nv, ok := nm.vertexAt(nx, nz)
		if !ok {
			return v
		}
		candidate := nv.add(offset)
		if distance(candidate, v) < stitchTolerance {
			return candidate
		}
		return v
	}

	if x == 0 {
		v = try(neighbors.MinusX, n, z, vec3{x: -float64(n)})
	}
	if x == n {
		v = try(neighbors.PlusX, 0, z, vec3{x: float64(n)})
	}
	if z == 0 {
		v = try(neighbors.MinusZ, x, n, vec3{z: -float64(n)})
	}
	if z == n {
		v = try(neighbors.PlusZ, x, 0, vec3{z: float64(n)})
	}

	return v
}
