package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/coords"
)

// ErrNotFound is returned when a requested chunk row does not exist.
var ErrNotFound = errors.New("store: row not found")

// ChunkPayload is everything the extractor produces for one chunk,
// ready to be split across the chunk_vertex and chunk_mesh rows.
type ChunkPayload struct {
	Heightmap []float32
	Vertices  []float32
	Normals   []float32
	Indices   []uint32
	Materials []uint32
}

// RowEventKind distinguishes a brand-new row from a row that already
// existed (the baseline pipeline only ever inserts, but the interface
// carries Update so a future regeneration path has somewhere to signal
// from).
type RowEventKind int

const (
	RowInserted RowEventKind = iota
	RowUpdated
)

// RowEvent mirrors the insert/update events a SpacetimeDB-style
// replicated table would publish to a subscriber.
type RowEvent struct {
	Table string
	Coord coords.XZ
	Kind  RowEventKind
}

const (
	TableChunkVertex = "chunk_vertex"
	TableChunkMesh   = "chunk_mesh"
)

// Store is the subset of the replicated table store's capabilities the
// terrain pipeline needs: insert, point/window read, and a predicate
// subscription that streams row events. A language-neutral
// implementation would keep three interfaces (insert, call_procedure,
// subscribe); call_procedure has no home here because request_chunk is
// invoked as a direct Go call (internal/chunkservice) or over HTTP
// (internal/api) rather than through the store itself.
type Store interface {
	InsertChunk(ctx context.Context, coord coords.XZ, payload ChunkPayload) error
	GetChunkVertex(ctx context.Context, coord coords.XZ) (ChunkVertex, error)
	GetChunkMesh(ctx context.Context, coord coords.XZ) (ChunkMesh, error)
	ListVerticesInWindow(ctx context.Context, bounds coords.Bounds) ([]ChunkVertex, error)
	ListMeshesInWindow(ctx context.Context, bounds coords.Bounds) ([]ChunkMesh, error)
	Subscribe(bounds coords.Bounds) *Subscription
}

// Subscription is an opaque handle over a live predicate subscription;
// Events delivers every RowEvent whose coordinate falls inside the
// bounds the subscription was opened with.
type Subscription struct {
	Events <-chan RowEvent
	store  *SQLiteStore
	id     int64
}

// Unsubscribe cancels the subscription. It is safe to call more than
// once.
func (s *Subscription) Unsubscribe() {
	s.store.unsubscribe(s.id)
}

type subscriber struct {
	bounds coords.Bounds
	ch     chan RowEvent
}

// SQLiteStore is the sqlite-backed Store implementation: chunk rows
// live in chunk_vertex/chunk_mesh, and subscriptions are an in-process
// fan-out over committed writes rather than a real replication feed.
type SQLiteStore struct {
	db      *sql.DB
	queries *LoggingQueries

	mu     sync.Mutex
	subs   map[int64]*subscriber
	nextID int64
}

// NewSQLiteStore wraps an already-open, already-migrated *sql.DB.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:      db,
		queries: NewLoggingQueries(db),
		subs:    make(map[int64]*subscriber),
	}
}

// InsertChunk idempotently inserts the chunk_vertex and chunk_mesh rows
// for coord. A duplicate insert (either row already present) is treated
// as success, per the baseline no-overwrite regeneration policy.
func (s *SQLiteStore) InsertChunk(ctx context.Context, coord coords.XZ, payload ChunkPayload) error {
	vertexRows, err := s.queries.InsertChunkVertex(ctx, InsertChunkVertexParams{
		GridX:     int64(coord.X),
		GridZ:     int64(coord.Z),
		Heightmap: payload.Heightmap,
		Vertices:  payload.Vertices,
		Normals:   payload.Normals,
	})
	if err != nil {
		return err
	}

	meshRows, err := s.queries.InsertChunkMesh(ctx, InsertChunkMeshParams{
		GridX:     int64(coord.X),
		GridZ:     int64(coord.Z),
		Indices:   payload.Indices,
		Materials: payload.Materials,
	})
	if err != nil {
		return err
	}

	if vertexRows > 0 {
		s.publish(RowEvent{Table: TableChunkVertex, Coord: coord, Kind: RowInserted})
	}
	if meshRows > 0 {
		s.publish(RowEvent{Table: TableChunkMesh, Coord: coord, Kind: RowInserted})
	}
	return nil
}

func (s *SQLiteStore) GetChunkVertex(ctx context.Context, coord coords.XZ) (ChunkVertex, error) {
	v, err := s.queries.GetChunkVertex(ctx, int64(coord.X), int64(coord.Z))
	if errors.Is(err, sql.ErrNoRows) {
		return ChunkVertex{}, ErrNotFound
	}
	return v, err
}

func (s *SQLiteStore) GetChunkMesh(ctx context.Context, coord coords.XZ) (ChunkMesh, error) {
	m, err := s.queries.GetChunkMesh(ctx, int64(coord.X), int64(coord.Z))
	if errors.Is(err, sql.ErrNoRows) {
		return ChunkMesh{}, ErrNotFound
	}
	return m, err
}

func (s *SQLiteStore) ListVerticesInWindow(ctx context.Context, bounds coords.Bounds) ([]ChunkVertex, error) {
	return s.queries.ListChunkVerticesInWindow(ctx, ListChunkVerticesInWindowParams{
		MinX: int64(bounds.MinX), MaxX: int64(bounds.MaxX),
		MinZ: int64(bounds.MinZ), MaxZ: int64(bounds.MaxZ),
	})
}

func (s *SQLiteStore) ListMeshesInWindow(ctx context.Context, bounds coords.Bounds) ([]ChunkMesh, error) {
	return s.queries.ListChunkMeshesInWindow(ctx, ListChunkMeshesInWindowParams{
		MinX: int64(bounds.MinX), MaxX: int64(bounds.MaxX),
		MinZ: int64(bounds.MinZ), MaxZ: int64(bounds.MaxZ),
	})
}

// Subscribe opens a predicate subscription over bounds. Matching
// insert/update events committed after this call are delivered on the
// returned channel; callers subscribe to the new window before
// unsubscribing the old one, so two subscriptions may briefly overlap.
func (s *SQLiteStore) Subscribe(bounds coords.Bounds) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	sub := &subscriber{bounds: bounds, ch: make(chan RowEvent, 256)}
	s.subs[id] = sub

	log.Debug("store subscription opened", "id", id, "min_x", bounds.MinX, "max_x", bounds.MaxX, "min_z", bounds.MinZ, "max_z", bounds.MaxZ)
	return &Subscription{Events: sub.ch, store: s, id: id}
}

func (s *SQLiteStore) unsubscribe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return
	}
	delete(s.subs, id)
	close(sub.ch)
	log.Debug("store subscription closed", "id", id)
}

func (s *SQLiteStore) publish(ev RowEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subs {
		if !sub.bounds.Contains(ev.Coord) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Warn("store subscription channel full, dropping event", "id", id, "table", ev.Table, "coord", ev.Coord.String())
		}
	}
}
