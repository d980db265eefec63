// Command terraingen samples and extracts a single chunk without a
// running server, printing summary stats. It exists for the same
// reason the original generator tool did: inspecting the pipeline's
// output for one coordinate without standing up the store or the
// network stack.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/surface"
)

func main() {
	seed := flag.Int64("seed", 42, "sampler seed")
	x := flag.Int("x", 0, "chunk grid x")
	z := flag.Int("z", 0, "chunk grid z")
	flag.Parse()

	sampler := heightfield.NewSampler(*seed)
	padded := sampler.Padded(int32(*x), int32(*z))

	extractor := surface.NewExtractor()
	mesh := extractor.Extract(padded, surface.Neighbors{})

	heights := sampler.Chunk(int32(*x), int32(*z))
	minH, maxH := heights[0], heights[0]
	for _, h := range heights {
		if h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}

	fmt.Fprintf(os.Stdout, "chunk (%d,%d) seed=%d\n", *x, *z, *seed)
	fmt.Fprintf(os.Stdout, "  height range: [%.3f, %.3f]\n", minH, maxH)
	fmt.Fprintf(os.Stdout, "  vertices:     %d\n", mesh.VertexCount())
	fmt.Fprintf(os.Stdout, "  triangles:    %d\n", mesh.TriangleCount())
}
