// Package chunkservice implements the server-side request_chunk
// procedure: sample, extract, stitch against already-built neighbors,
// and idempotently persist the result.
package chunkservice

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/store"
	"github.com/voidterrain/terrain/internal/surface"
)

// Service handles request_chunk. It holds the one Sampler and one
// Extractor for the process's lifetime so every invocation reuses the
// same Perlin permutation table, and serializes execution the way the
// store's single-writer reducer loop would.
type Service struct {
	sampler   *heightfield.Sampler
	extractor *surface.Extractor
	store     store.Store

	mu sync.Mutex
}

// NewService constructs a chunk service bound to a seed and a store.
func NewService(seed int64, st store.Store) *Service {
	return &Service{
		sampler:   heightfield.NewSampler(seed),
		extractor: surface.NewExtractor(),
		store:     st,
	}
}

// RequestChunk runs the full pipeline for coord and persists the
// result. A row pair that already exists is left untouched and treated
// as success; any store error is returned to the caller for logging.
// Neither internal/api nor internal/transport passes the error text on
// to the client.
func (s *Service) RequestChunk(ctx context.Context, coord coords.XZ) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Debug("request_chunk", "coord", coord.String())

	neighbors, err := s.lookupNeighbors(ctx, coord)
	if err != nil {
		return err
	}

	padded := s.sampler.Padded(coord.X, coord.Z)
	mesh := s.extractor.Extract(padded, neighbors)
	heightmap := s.sampler.Chunk(coord.X, coord.Z)

	payload := store.ChunkPayload{
		Heightmap: heightmap,
		Vertices:  mesh.Positions,
		Normals:   mesh.Normals,
		Indices:   mesh.Indices,
		Materials: mesh.Materials,
	}

	if err := s.store.InsertChunk(ctx, coord, payload); err != nil {
		log.Error("request_chunk insert failed", "coord", coord.String(), "error", err)
		return err
	}

	log.Debug("request_chunk completed", "coord", coord.String(), "vertex_count", mesh.VertexCount(), "triangle_count", mesh.TriangleCount())
	return nil
}

// lookupNeighbors fetches the four edge-adjacent chunks' vertex rows,
// when present, for boundary stitching. Diagonal neighbors are not
// consulted: the extractor only snaps straight shared edges, never
// corners.
func (s *Service) lookupNeighbors(ctx context.Context, coord coords.XZ) (surface.Neighbors, error) {
	var neighbors surface.Neighbors

	fetch := func(at coords.XZ) (*surface.Mesh, error) {
		row, err := s.store.GetChunkVertex(ctx, at)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return surface.NewMeshFromBuffers(row.Vertices, row.Normals), nil
	}

	adj := coords.Neighbors4(coord)
	var err error
	if neighbors.MinusX, err = fetch(adj[0]); err != nil {
		return surface.Neighbors{}, err
	}
	if neighbors.PlusX, err = fetch(adj[1]); err != nil {
		return surface.Neighbors{}, err
	}
	if neighbors.MinusZ, err = fetch(adj[2]); err != nil {
		return surface.Neighbors{}, err
	}
	if neighbors.PlusZ, err = fetch(adj[3]); err != nil {
		return surface.Neighbors{}, err
	}

	return neighbors, nil
}
