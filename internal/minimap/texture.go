package minimap

import (
	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/heightfield"
)

// Texture is the RGBA byte buffer the Streaming Coordinator paints
// chunk heights into, centered on a chunk coordinate.
type Texture struct {
	Size   int
	Pixels []byte
	center coords.XZ
}

// NewTexture allocates a size x size RGBA texture, all zeroed (fully
// transparent black) until chunks are painted into it.
func NewTexture(size int) *Texture {
	return &Texture{
		Size:   size,
		Pixels: make([]byte, size*size*4),
	}
}

// Recenter moves the texture's logical center, used whenever the
// window center changes. It does not clear or shift existing pixels;
// callers repaint every dirty chunk after recentering.
func (t *Texture) Recenter(center coords.XZ) {
	t.center = center
}

// PaintChunk writes heightmap's CHUNK_SIZE^2 samples into the texture
// at the offset implied by coord's position relative to the texture's
// center, sampling the fixed gradient and clamping against heightRange.
// Out-of-bounds pixels are silently skipped.
func (t *Texture) PaintChunk(coord coords.XZ, heightmap []float32, heightRange float32) {
	n := int(heightfield.ChunkSize)
	originX := int(coord.X-t.center.X)*n + (t.Size-n)/2
	originZ := int(coord.Z-t.center.Z)*n + (t.Size-n)/2

	for z := 0; z < n; z++ {
		py := originZ + z
		if py < 0 || py >= t.Size {
			continue
		}
		for x := 0; x < n; x++ {
			px := originX + x
			if px < 0 || px >= t.Size {
				continue
			}

			h := heightmap[z*n+x]
			r, g, b, a := Color(h, heightRange)

			o := (py*t.Size + px) * 4
			t.Pixels[o] = r
			t.Pixels[o+1] = g
			t.Pixels[o+2] = b
			t.Pixels[o+3] = a
		}
	}
}
