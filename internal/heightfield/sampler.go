// Package heightfield implements the deterministic terrain sampler:
// a fixed-parameter fractal Perlin noise function seeded once and
// shared by reference across every caller.
package heightfield

import (
	"github.com/aquilax/go-perlin"
)

const (
	// ChunkSize is the width/depth of a chunk in world units.
	ChunkSize = 32

	// PaddedDim is the side length of a padded heightfield grid covering
	// logical -1..=ChunkSize+1: one sample of neighboring-chunk border
	// before the interior and two after it, on each axis.
	PaddedDim = ChunkSize + 3

	// HeightRange bounds the signed sampler output.
	HeightRange = 32.0

	baseFrequency = 0.01
	octaves       = 4
	persistence   = 0.5
	lacunarity    = 2.0

	// perlinAlpha/perlinBeta/perlinN parameterize go-perlin's internal
	// fractal construction; the VoidMesh noise service uses alpha=2,
	// beta=2, n=3 for terrain-shaped noise and this sampler keeps the
	// same tuning.
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = int32(3)
)

// Sampler is a deterministic function h(x,z) -> f32 built from fixed
// fractal-Perlin parameters and a seed. Two Samplers constructed with
// the same seed agree bit-for-bit on every sample.
type Sampler struct {
	noise *perlin.Perlin
	seed  int64
}

// NewSampler constructs a Sampler from a seed. The underlying Perlin
// permutation table is built once and reused for every sample call.
func NewSampler(seed int64) *Sampler {
	return &Sampler{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed),
		seed:  seed,
	}
}

// Seed returns the seed this sampler was constructed with.
func (s *Sampler) Seed() int64 {
	return s.seed
}

// Sample returns the signed terrain height at world coordinate (x, z),
// clamped to [-HeightRange, HeightRange].
func (s *Sampler) Sample(x, z float64) float32 {
	var acc, norm float64
	frequency := baseFrequency
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		acc += s.noise.Noise2D(x*frequency, z*frequency) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	h := (acc / norm) * HeightRange
	if h > HeightRange {
		h = HeightRange
	}
	if h < -HeightRange {
		h = -HeightRange
	}
	return float32(h)
}

// Chunk samples the ChunkSize^2 interior heights of chunk (cx, cz) in
// row-major [z*ChunkSize+x] order.
func (s *Sampler) Chunk(cx, cz int32) []float32 {
	out := make([]float32, ChunkSize*ChunkSize)
	for lz := int32(0); lz < ChunkSize; lz++ {
		for lx := int32(0); lx < ChunkSize; lx++ {
			wx := float64(cx*ChunkSize + lx)
			wz := float64(cz*ChunkSize + lz)
			out[lz*ChunkSize+lx] = s.Sample(wx, wz)
		}
	}
	return out
}

// Padded samples the PaddedDim^2 padded heightfield for chunk (cx, cz):
// the chunk's interior plus a border of its neighbors' heights (one
// sample before the interior and two after it, on each axis), used by
// the extractor for boundary-correct gradients.
func (s *Sampler) Padded(cx, cz int32) *PaddedHeightfield {
	p := &PaddedHeightfield{
		dim:    PaddedDim,
		values: make([]float32, PaddedDim*PaddedDim),
	}
	for lz := int32(-1); lz <= ChunkSize+1; lz++ {
		for lx := int32(-1); lx <= ChunkSize+1; lx++ {
			wx := float64(cx*ChunkSize + lx)
			wz := float64(cz*ChunkSize + lz)
			p.values[p.index(lx, lz)] = s.Sample(wx, wz)
		}
	}
	return p
}
