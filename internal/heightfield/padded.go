package heightfield

// PaddedHeightfield covers logical coordinates -1..=ChunkSize+1 for a
// single chunk, stored row-major. Out-of-range logical coordinates are
// clamped to the grid border.
type PaddedHeightfield struct {
	dim    int32
	values []float32
}

// Dim returns the padded grid's side length (ChunkSize+3).
func (p *PaddedHeightfield) Dim() int32 {
	return p.dim
}

// index maps logical (x, z) to the row-major storage index, clamping
// out-of-range coordinates to the grid border.
func (p *PaddedHeightfield) index(x, z int32) int {
	if x < -1 {
		x = -1
	}
	if x > ChunkSize+1 {
		x = ChunkSize + 1
	}
	if z < -1 {
		z = -1
	}
	if z > ChunkSize+1 {
		z = ChunkSize + 1
	}
	return int((z+1)*p.dim + (x + 1))
}

// Get returns the padded height at logical (x, z), clamping
// out-of-range coordinates to the grid border.
func (p *PaddedHeightfield) Get(x, z int32) float32 {
	return p.values[p.index(x, z)]
}

// NewConstantPadded builds a padded heightfield whose every sample is
// the given height. It exists for tests that exercise the extractor
// against a perfectly flat surface without going through a Sampler.
func NewConstantPadded(height float32) *PaddedHeightfield {
	return NewPaddedFromFunc(func(x, z int32) float32 { return height })
}

// NewPaddedFromFunc builds a padded heightfield by evaluating f at
// every logical coordinate -1..=ChunkSize+1. It exists for tests that
// need a synthetic heightfield shape (a gradient, a ridge) without
// going through a Sampler.
func NewPaddedFromFunc(f func(x, z int32) float32) *PaddedHeightfield {
	p := &PaddedHeightfield{
		dim:    PaddedDim,
		values: make([]float32, PaddedDim*PaddedDim),
	}
	for z := int32(-1); z <= ChunkSize+1; z++ {
		for x := int32(-1); x <= ChunkSize+1; x++ {
			p.values[p.index(x, z)] = f(x, z)
		}
	}
	return p
}

// Interior returns the unpadded ChunkSize^2 interior heights in the
// same row-major order Sampler.Chunk produces.
func (p *PaddedHeightfield) Interior() []float32 {
	out := make([]float32, ChunkSize*ChunkSize)
	for z := int32(0); z < ChunkSize; z++ {
		for x := int32(0); x < ChunkSize; x++ {
			out[z*ChunkSize+x] = p.Get(x, z)
		}
	}
	return out
}
