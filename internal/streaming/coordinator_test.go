package streaming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/render"
)

func originCamera() Camera { return Camera{X: 0, Z: 0} }

func TestChunkCenterFloorsCameraPosition(t *testing.T) {
	size := float64(heightfield.ChunkSize)
	assert.Equal(t, coords.New(0, 0), ChunkCenter(Camera{X: 0, Z: 0}))
	assert.Equal(t, coords.New(1, 0), ChunkCenter(Camera{X: size + 1, Z: 0}))
	assert.Equal(t, coords.New(-1, 0), ChunkCenter(Camera{X: -1, Z: 0}))
}

func TestMaterializeSpawnsWhenBothRowsPresent(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)

	src.latestVertexSub().ch <- VertexEvent{Coord: coord, Row: VertexRow{Heightmap: make([]float32, heightfield.ChunkSize*heightfield.ChunkSize), Vertices: []float32{1, 2, 3}, Normals: []float32{0, 1, 0}}}
	src.latestMeshSub().ch <- MeshEvent{Coord: coord, Row: MeshRow{Indices: []uint32{0, 0, 0}, Materials: []uint32{0}}}

	c.Tick(now, originCamera(), false)

	assert.True(t, fake.Has(coord))
	assert.Equal(t, 1, fake.SpawnCount(coord))
}

func TestMaterializeDropsMalformedRowWithoutSpawning(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)

	// Vertices and normals disagree in length: a corrupted wire row.
	src.latestVertexSub().ch <- VertexEvent{Coord: coord, Row: VertexRow{Heightmap: make([]float32, heightfield.ChunkSize*heightfield.ChunkSize), Vertices: []float32{1, 2, 3}, Normals: []float32{0, 1, 0, 0, 0, 0}}}
	src.latestMeshSub().ch <- MeshEvent{Coord: coord, Row: MeshRow{Indices: []uint32{0, 0, 0}, Materials: []uint32{0}}}

	c.Tick(now, originCamera(), false)

	assert.False(t, fake.Has(coord))
	assert.Equal(t, 0, fake.SpawnCount(coord))
}

func TestMaterializeDropsRowWithOutOfRangeIndex(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)

	src.latestVertexSub().ch <- VertexEvent{Coord: coord, Row: VertexRow{Heightmap: make([]float32, heightfield.ChunkSize*heightfield.ChunkSize), Vertices: []float32{1, 2, 3}, Normals: []float32{0, 1, 0}}}
	// Only one vertex (index 0 valid), but the index buffer references index 1.
	src.latestMeshSub().ch <- MeshEvent{Coord: coord, Row: MeshRow{Indices: []uint32{0, 1, 0}, Materials: []uint32{0}}}

	c.Tick(now, originCamera(), false)

	assert.False(t, fake.Has(coord))
}

func TestMaterializeRequestsChunkWhenVertexRowMissing(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)

	assert.Equal(t, 1, src.requestCount(coord))
	assert.Equal(t, 1, c.RetryCount())
	assert.False(t, fake.Has(coord))
}

func TestMaterializeRetriesWhenMeshRowMissing(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)
	src.latestVertexSub().ch <- VertexEvent{Coord: coord, Row: VertexRow{Vertices: []float32{1, 2, 3}, Normals: []float32{0, 1, 0}}}

	c.Tick(now, originCamera(), false)

	assert.False(t, fake.Has(coord))
	assert.Equal(t, 1, c.RetryCount())
}

func TestExpiredRetryIsPromotedBackToDirtyAndRerequested(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	coord := coords.New(0, 0)
	retryDelay := time.Second

	c := NewCoordinator(src, fake, 0, retryDelay, 32, 0)

	start := time.Unix(0, 0)
	c.Tick(start, originCamera(), true)
	require.Equal(t, 1, src.requestCount(coord))

	afterDeadline := start.Add(retryDelay + time.Millisecond)
	c.Tick(afterDeadline, originCamera(), false)

	assert.Equal(t, 2, src.requestCount(coord))
	assert.Equal(t, 1, c.RetryCount())
}

func TestSpawnedChunkIsNotRespawnedOnWindowReentry(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	size := float64(heightfield.ChunkSize)
	coord := coords.New(0, 0)

	c := NewCoordinator(src, fake, 1, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, Camera{X: 0, Z: 0}, true)
	src.latestVertexSub().ch <- VertexEvent{Coord: coord, Row: VertexRow{Heightmap: make([]float32, heightfield.ChunkSize*heightfield.ChunkSize), Vertices: []float32{1, 2, 3}, Normals: []float32{0, 1, 0}}}
	src.latestMeshSub().ch <- MeshEvent{Coord: coord, Row: MeshRow{Indices: []uint32{0, 0, 0}, Materials: []uint32{0}}}
	c.Tick(now, Camera{X: 0, Z: 0}, false)
	require.Equal(t, 1, fake.SpawnCount(coord))

	// Move away then back: both ticks change the window center, and
	// coord re-enters the dirty set on the way back, but its rows haven't
	// changed and it was already uploaded.
	c.Tick(now, Camera{X: size * 3, Z: 0}, false)
	c.Tick(now, Camera{X: 0, Z: 0}, false)

	assert.Equal(t, 1, fake.SpawnCount(coord))
}

func TestReconnectMarksFullWindowDirty(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	radius := int32(2)

	c := NewCoordinator(src, fake, radius, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, originCamera(), true)

	expected := int((2*radius + 1) * (2*radius + 1))
	assert.Equal(t, expected, c.RetryCount())
	assert.Len(t, src.requested, expected)
}

func TestReconnectOpensFreshSubscriptionsAroundNewCenter(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	radius := int32(2)
	size := float64(heightfield.ChunkSize)

	c := NewCoordinator(src, fake, radius, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, Camera{X: 5 * size, Z: -4 * size}, true)
	require.Equal(t, coords.New(5, -4), *c.lastCenter)

	c.Tick(now, Camera{X: 200, Z: 128}, true)

	wantCenter := coords.New(6, 4)
	assert.Equal(t, wantCenter, *c.lastCenter)

	wantBounds := coords.WindowAround(wantCenter, radius)
	assert.Equal(t, wantBounds, src.latestVertexSub().bounds)
	assert.Equal(t, wantBounds, src.latestMeshSub().bounds)

	expected := int((2*radius + 1) * (2*radius + 1))
	assert.Equal(t, expected, c.RetryCount())
}

func TestResubscribeOpensNewBeforeClosingOld(t *testing.T) {
	src := newFakeSource()
	fake := render.NewFake()
	size := float64(heightfield.ChunkSize)

	c := NewCoordinator(src, fake, 0, time.Second, 32, 0)

	now := time.Unix(0, 0)
	c.Tick(now, Camera{X: 0, Z: 0}, true)
	firstVertexSub := src.latestVertexSub()
	firstMeshSub := src.latestMeshSub()

	c.Tick(now, Camera{X: size, Z: 0}, false)

	assert.True(t, firstVertexSub.unsubscribed)
	assert.True(t, firstMeshSub.unsubscribed)
	assert.Len(t, src.vertexSubs, 2)
	assert.Len(t, src.meshSubs, 2)
}
