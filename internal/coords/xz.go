// Package coords defines the chunk address space shared by every
// component: the sampler, the extractor, the store, and the streaming
// coordinator all key their work off coords.XZ.
package coords

import (
	"encoding/binary"
	"fmt"
)

// XZ identifies a chunk on the infinite XZ plane. It is structurally
// hashable and comparable, so it can be used directly as a map key.
type XZ struct {
	X int32
	Z int32
}

// New is a small convenience constructor used throughout the tests.
func New(x, z int32) XZ {
	return XZ{X: x, Z: z}
}

func (c XZ) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Add returns the coordinate offset by (dx, dz).
func (c XZ) Add(dx, dz int32) XZ {
	return XZ{X: c.X + dx, Z: c.Z + dz}
}

// InSquare reports whether c lies within the radius-r square window
// centered on center (inclusive), matching the subscription window
// shape used by the Streaming Coordinator.
func (c XZ) InSquare(center XZ, radius int32) bool {
	dx := c.X - center.X
	if dx < 0 {
		dx = -dx
	}
	dz := c.Z - center.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= radius && dz <= radius
}

// Square returns every coordinate in the radius-r square centered on
// center (inclusive), in row-major (z outer, x inner) order.
func Square(center XZ, radius int32) []XZ {
	out := make([]XZ, 0, (2*radius+1)*(2*radius+1))
	for z := center.Z - radius; z <= center.Z+radius; z++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			out = append(out, XZ{X: x, Z: z})
		}
	}
	return out
}

// Bounds is the inclusive rectangular window [MinX,MaxX] x [MinZ,MaxZ]
// used for the SQL-style subscription predicate and the store's window
// queries. The chunk service's stitching lookup uses Neighbors4 instead.
type Bounds struct {
	MinX, MaxX int32
	MinZ, MaxZ int32
}

// WindowAround builds the Bounds for a radius-r subscription window.
func WindowAround(center XZ, radius int32) Bounds {
	return Bounds{
		MinX: center.X - radius, MaxX: center.X + radius,
		MinZ: center.Z - radius, MaxZ: center.Z + radius,
	}
}

// Contains reports whether coord falls inside the bounds (inclusive).
func (b Bounds) Contains(coord XZ) bool {
	return coord.X >= b.MinX && coord.X <= b.MaxX && coord.Z >= b.MinZ && coord.Z <= b.MaxZ
}

// Neighbors4 returns coord's four edge-adjacent coordinates, in
// (-X, +X, -Z, +Z) order: the stitching neighborhood the chunk service
// consults before extracting a mesh. Diagonal neighbors are excluded
// since the extractor only snaps straight shared edges, never corners.
func Neighbors4(coord XZ) [4]XZ {
	return [4]XZ{
		coord.Add(-1, 0),
		coord.Add(1, 0),
		coord.Add(0, -1),
		coord.Add(0, 1),
	}
}

// MarshalBinary serializes XZ as two little-endian i32s.
func (c XZ) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Z))
	return buf, nil
}

// UnmarshalBinary parses the wire form produced by MarshalBinary.
func (c *XZ) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("coords: XZ wire form must be 8 bytes, got %d", len(data))
	}
	c.X = int32(binary.LittleEndian.Uint32(data[0:4]))
	c.Z = int32(binary.LittleEndian.Uint32(data[4:8]))
	return nil
}
