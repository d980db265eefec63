package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voidterrain/terrain/internal/coords"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db, "file://migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func samplePayload() ChunkPayload {
	return ChunkPayload{
		Heightmap: []float32{1, 2, 3, 4},
		Vertices:  []float32{0, 0, 0, 1, 1, 1},
		Normals:   []float32{0, 1, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 0},
		Materials: []uint32{0, 0},
	}
}

func TestInsertAndGetChunk(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	coord := coords.New(0, 0)

	if err := s.InsertChunk(ctx, coord, samplePayload()); err != nil {
		t.Fatalf("insert chunk: %v", err)
	}

	v, err := s.GetChunkVertex(ctx, coord)
	if err != nil {
		t.Fatalf("get chunk vertex: %v", err)
	}
	if len(v.Heightmap) != 4 {
		t.Fatalf("expected 4 heights, got %d", len(v.Heightmap))
	}

	m, err := s.GetChunkMesh(ctx, coord)
	if err != nil {
		t.Fatalf("get chunk mesh: %v", err)
	}
	if len(m.Indices) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(m.Indices))
	}
}

func TestInsertChunkIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	coord := coords.New(5, -3)

	if err := s.InsertChunk(ctx, coord, samplePayload()); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.InsertChunk(ctx, coord, samplePayload()); err != nil {
		t.Fatalf("second insert: %v", err)
	}

	v, err := s.GetChunkVertex(ctx, coord)
	if err != nil {
		t.Fatalf("get chunk vertex: %v", err)
	}
	if len(v.Heightmap) != 4 {
		t.Fatalf("row must be unchanged after duplicate insert")
	}
}

func TestGetChunkVertexNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetChunkVertex(ctx, coords.New(99, 99))
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListVerticesInWindow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, c := range []coords.XZ{coords.New(0, 0), coords.New(1, 0), coords.New(5, 5)} {
		if err := s.InsertChunk(ctx, c, samplePayload()); err != nil {
			t.Fatalf("insert %v: %v", c, err)
		}
	}

	rows, err := s.ListVerticesInWindow(ctx, coords.WindowAround(coords.New(0, 0), 2))
	if err != nil {
		t.Fatalf("list vertices: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in window, got %d", len(rows))
	}
}

func TestSubscribePublishesInsertEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	coord := coords.New(2, 2)

	sub := s.Subscribe(coords.WindowAround(coord, 1))
	defer sub.Unsubscribe()

	if err := s.InsertChunk(ctx, coord, samplePayload()); err != nil {
		t.Fatalf("insert chunk: %v", err)
	}

	seenVertex, seenMesh := false, false
	for i := 0; i < 2; i++ {
		ev := <-sub.Events
		if ev.Coord != coord {
			t.Fatalf("unexpected coord in event: %v", ev.Coord)
		}
		switch ev.Table {
		case TableChunkVertex:
			seenVertex = true
		case TableChunkMesh:
			seenMesh = true
		}
	}
	if !seenVertex || !seenMesh {
		t.Fatalf("expected both chunk_vertex and chunk_mesh events, got vertex=%v mesh=%v", seenVertex, seenMesh)
	}
}

func TestSubscribeIgnoresOutOfWindowEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sub := s.Subscribe(coords.WindowAround(coords.New(0, 0), 1))
	defer sub.Unsubscribe()

	if err := s.InsertChunk(ctx, coords.New(50, 50), samplePayload()); err != nil {
		t.Fatalf("insert chunk: %v", err)
	}

	select {
	case ev := <-sub.Events:
		t.Fatalf("unexpected event delivered outside subscription window: %+v", ev)
	default:
	}
}
