package surface

import "github.com/voidterrain/terrain/internal/heightfield"

// hermiteSample is a (position, normal) pair sampled at one corner of a
// dual-contouring cell.
type hermiteSample struct {
	p vec3
	n vec3
}

// cellCorners collects the Hermite samples at the four corners of cell
// (x, z): (x,z), (x+1,z), (x,z+1), (x+1,z+1).
func cellCorners(padded *heightfield.PaddedHeightfield, x, z int32) [4]hermiteSample {
	corner := func(cx, cz int32) hermiteSample {
		h := padded.Get(cx, cz)
		dhdx := padded.Get(cx+1, cz) - padded.Get(cx-1, cz)
		dhdz := padded.Get(cx, cz+1) - padded.Get(cx, cz-1)
		n := vec3{x: -float64(dhdx), y: 2, z: -float64(dhdz)}.normalize()
		return hermiteSample{
			p: vec3{x: float64(cx), y: float64(h), z: float64(cz)},
			n: n,
		}
	}
	return [4]hermiteSample{
		corner(x, z),
		corner(x+1, z),
		corner(x, z+1),
		corner(x+1, z+1),
	}
}

// solveQEF places the dual-contouring vertex for a set of Hermite
// samples at the least-squares intersection of their tangent planes,
// falling back to A^T b directly when A^T A is singular. It also
// returns the averaged, renormalized vertex normal.
func solveQEF(samples [4]hermiteSample) (vec3, vec3) {
	var ata mat3
	var atb vec3
	var normalSum vec3

	for _, s := range samples {
		ata = ata.addOuter(s.n)
		atb = atb.add(s.n.scale(s.n.dot(s.p)))
		normalSum = normalSum.add(s.n)
	}

	v, ok := ata.solve(atb)
	if !ok {
		v = atb
	}

	return v, normalSum.normalize()
}
