package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ChunkVertex is the chunk_vertex row: one per generated chunk, holding
// the unpadded heightmap and the dual-contouring vertex buffers.
type ChunkVertex struct {
	GridX     int64
	GridZ     int64
	Heightmap []float32
	Vertices  []float32
	Normals   []float32
	CreatedAt time.Time
}

// ChunkMesh is the chunk_mesh row paired with a ChunkVertex of the same
// coordinate.
type ChunkMesh struct {
	GridX     int64
	GridZ     int64
	Indices   []uint32
	Materials []uint32
	CreatedAt time.Time
}

func encodeFloat32s(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32s(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("store: float32 buffer length %d not divisible by 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func encodeUint32s(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func decodeUint32s(buf []byte) ([]uint32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("store: uint32 buffer length %d not divisible by 4", len(buf))
	}
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return out, nil
}
