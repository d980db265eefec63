package chunkservice

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.RunMigrations(db, "file://../store/migrations"))

	return NewService(42, store.NewSQLiteStore(db))
}

func TestRequestChunkPersistsRowPair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	coord := coords.New(0, 0)

	require.NoError(t, svc.RequestChunk(ctx, coord))

	v, err := svc.store.GetChunkVertex(ctx, coord)
	require.NoError(t, err)
	assert.Len(t, v.Heightmap, heightfield.ChunkSize*heightfield.ChunkSize)

	m, err := svc.store.GetChunkMesh(ctx, coord)
	require.NoError(t, err)
	assert.Equal(t, 2*heightfield.ChunkSize*heightfield.ChunkSize*3, len(m.Indices))
}

func TestRequestChunkIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	coord := coords.New(3, -1)

	require.NoError(t, svc.RequestChunk(ctx, coord))
	first, err := svc.store.GetChunkVertex(ctx, coord)
	require.NoError(t, err)

	require.NoError(t, svc.RequestChunk(ctx, coord))
	second, err := svc.store.GetChunkVertex(ctx, coord)
	require.NoError(t, err)

	assert.Equal(t, first.Heightmap, second.Heightmap)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestRequestChunkStitchesWithExistingNeighbor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestChunk(ctx, coords.New(0, 0)))
	require.NoError(t, svc.RequestChunk(ctx, coords.New(1, 0)))

	left, err := svc.store.GetChunkMesh(ctx, coords.New(0, 0))
	require.NoError(t, err)
	_ = left

	leftVertex, err := svc.store.GetChunkVertex(ctx, coords.New(0, 0))
	require.NoError(t, err)
	rightVertex, err := svc.store.GetChunkVertex(ctx, coords.New(1, 0))
	require.NoError(t, err)

	n := heightfield.ChunkSize
	dim := n + 1
	for z := 0; z <= n; z++ {
		lo := (z*dim + n) * 3
		ro := (z * dim) * 3
		assert.InDelta(t, leftVertex.Vertices[lo]-float32(n), rightVertex.Vertices[ro], 1e-6, "z=%d", z)
		assert.InDelta(t, leftVertex.Vertices[lo+1], rightVertex.Vertices[ro+1], 1e-6, "z=%d", z)
		assert.InDelta(t, leftVertex.Vertices[lo+2], rightVertex.Vertices[ro+2], 1e-6, "z=%d", z)
	}
}
