package surface

// Material tags a mesh vertex for the renderer's material system. The
// baseline implementation only ever emits MaterialGrass; the type is
// kept distinct from a bare uint32 so a future biome pass has an enum
// to extend.
type Material uint32

const (
	MaterialGrass Material = 0
)
