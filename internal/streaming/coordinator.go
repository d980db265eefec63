package streaming

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/minimap"
	"github.com/voidterrain/terrain/internal/render"
)

// Camera is the coordinator's only per-tick input besides the event
// stream: a world-space position the window center is derived from.
type Camera struct {
	X, Z float64
}

// ChunkCenter floors the camera position down to a chunk coordinate.
func ChunkCenter(cam Camera) coords.XZ {
	size := float64(heightfield.ChunkSize)
	return coords.New(
		int32(math.Floor(cam.X/size)),
		int32(math.Floor(cam.Z/size)),
	)
}

type retryEntry struct {
	coord    coords.XZ
	deadline time.Time
}

// Coordinator is the client-local state machine: it maintains the
// subscription window, the dirty set, and the retry list, and uploads
// meshes to the renderer exactly once per coordinate.
type Coordinator struct {
	source   ReplicationSource
	renderer render.Renderer

	radius      int32
	retryDelay  time.Duration
	heightRange float32

	lastCenter *coords.XZ
	vertexSub  VertexSubscription
	meshSub    MeshSubscription

	dirty   map[coords.XZ]struct{}
	retries []retryEntry

	replicaVertex map[coords.XZ]VertexRow
	replicaMesh   map[coords.XZ]MeshRow
	spawned       map[coords.XZ]struct{}

	Minimap *minimap.Texture
}

// NewCoordinator builds a coordinator bound to a replication source
// and a renderer. minimapSize is the side length, in pixels, of the
// minimap texture; pass 0 to disable the minimap side channel.
func NewCoordinator(source ReplicationSource, renderer render.Renderer, radius int32, retryDelay time.Duration, heightRange float32, minimapSize int) *Coordinator {
	c := &Coordinator{
		source:        source,
		renderer:      renderer,
		radius:        radius,
		retryDelay:    retryDelay,
		heightRange:   heightRange,
		dirty:         make(map[coords.XZ]struct{}),
		replicaVertex: make(map[coords.XZ]VertexRow),
		replicaMesh:   make(map[coords.XZ]MeshRow),
		spawned:       make(map[coords.XZ]struct{}),
	}
	if minimapSize > 0 {
		c.Minimap = minimap.NewTexture(minimapSize)
	}
	return c
}

// DirtyCount reports the current size of the dirty set, used by debug
// tooling to surface streaming health.
func (c *Coordinator) DirtyCount() int {
	return len(c.dirty)
}

// RetryCount reports the current size of the pending retry list.
func (c *Coordinator) RetryCount() int {
	return len(c.retries)
}

// Tick advances the coordinator by one frame. connected signals a
// fresh connection or reconnect: the full R-radius window is marked
// dirty and a new pair of subscriptions is opened regardless of
// whether the window's center moved.
func (c *Coordinator) Tick(now time.Time, cam Camera, connected bool) {
	c.drainEvents()

	center := ChunkCenter(cam)
	windowChanged := connected || c.lastCenter == nil || *c.lastCenter != center

	if windowChanged {
		for _, coord := range coords.Square(center, c.radius) {
			c.dirty[coord] = struct{}{}
		}
		c.resubscribe(center)
		if c.Minimap != nil {
			c.Minimap.Recenter(center)
		}
		c.lastCenter = &center
	}

	c.promoteExpiredRetries(now)
	c.materialize(now)
}

// resubscribe opens new window subscriptions before dropping the old
// ones, so there is never a tick during which no subscription covers
// the overlapping region.
func (c *Coordinator) resubscribe(center coords.XZ) {
	bounds := coords.WindowAround(center, c.radius)

	newVertexSub := c.source.SubscribeVertex(bounds)
	newMeshSub := c.source.SubscribeMesh(bounds)

	oldVertexSub, oldMeshSub := c.vertexSub, c.meshSub
	c.vertexSub, c.meshSub = newVertexSub, newMeshSub

	if oldVertexSub != nil {
		oldVertexSub.Unsubscribe()
	}
	if oldMeshSub != nil {
		oldMeshSub.Unsubscribe()
	}
}

// drainEvents pulls every currently available row event into the local
// replica and marks its coordinate dirty, without blocking. Events for
// a coordinate outside the current window are ignored: they can still
// arrive briefly after a resubscribe, since the old subscription isn't
// torn down until the new one is already open.
func (c *Coordinator) drainEvents() {
	if c.vertexSub != nil {
	drainVertex:
		for {
			select {
			case ev, ok := <-c.vertexSub.Events():
				if !ok {
					c.vertexSub = nil
					break drainVertex
				}
				if !c.inWindow(ev.Coord) {
					continue
				}
				c.replicaVertex[ev.Coord] = ev.Row
				c.dirty[ev.Coord] = struct{}{}
			default:
				break drainVertex
			}
		}
	}

	if c.meshSub != nil {
	drainMesh:
		for {
			select {
			case ev, ok := <-c.meshSub.Events():
				if !ok {
					c.meshSub = nil
					break drainMesh
				}
				if !c.inWindow(ev.Coord) {
					continue
				}
				c.replicaMesh[ev.Coord] = ev.Row
				c.dirty[ev.Coord] = struct{}{}
			default:
				break drainMesh
			}
		}
	}
}

// inWindow reports whether coord falls within the currently subscribed
// square. Before the first window is established, everything is kept.
func (c *Coordinator) inWindow(coord coords.XZ) bool {
	if c.lastCenter == nil {
		return true
	}
	return coord.InSquare(*c.lastCenter, c.radius)
}

// materialize drains the dirty set: a coordinate with both rows
// present is uploaded to the renderer (or, if already uploaded, only
// repainted on the minimap) and cleared; a coordinate
// missing its vertex row triggers request_chunk and a retry; a
// coordinate with a vertex row but no mesh row just retries.
func (c *Coordinator) materialize(now time.Time) {
	for coord := range c.dirty {
		vRow, haveVertex := c.replicaVertex[coord]
		mRow, haveMesh := c.replicaMesh[coord]

		switch {
		case haveVertex && haveMesh:
			if reason, malformed := malformedRow(vRow, mRow); malformed {
				log.Warn("streaming: dropping malformed chunk row", "coord", coord.String(), "reason", reason)
			} else if _, already := c.spawned[coord]; !already {
				c.spawn(coord, vRow, mRow)
			} else if c.Minimap != nil {
				c.Minimap.PaintChunk(coord, vRow.Heightmap, c.heightRange)
			}
			delete(c.dirty, coord)
		case !haveVertex:
			c.source.RequestChunk(coord)
			c.scheduleRetry(coord, now)
			delete(c.dirty, coord)
		default:
			c.scheduleRetry(coord, now)
			delete(c.dirty, coord)
		}
	}
}

// malformedRow checks the row-pair invariants a corrupted wire message
// could violate: matching vertex/normal lengths, both a multiple of 3
// floats per vertex, an index count that's a multiple of 3, and every
// index within the vertex count. A violation is fatal for this chunk
// only — the caller drops the upload but leaves the coordinate free to
// be reconsidered if a corrected row arrives later.
func malformedRow(v VertexRow, m MeshRow) (reason string, malformed bool) {
	if len(v.Vertices) != len(v.Normals) {
		return "vertex/normal length mismatch", true
	}
	if len(v.Vertices)%3 != 0 {
		return "vertex length not a multiple of 3", true
	}
	if len(m.Indices)%3 != 0 {
		return "index length not a multiple of 3", true
	}
	vertexCount := uint32(len(v.Vertices) / 3)
	for _, idx := range m.Indices {
		if idx >= vertexCount {
			return "index out of range", true
		}
	}
	return "", false
}

func (c *Coordinator) spawn(coord coords.XZ, vRow VertexRow, mRow MeshRow) {
	c.spawned[coord] = struct{}{}
	c.renderer.SpawnChunk(coord, render.Mesh{
		Positions: vRow.Vertices,
		Normals:   vRow.Normals,
		Indices:   mRow.Indices,
	})

	if c.Minimap != nil && c.lastCenter != nil {
		c.Minimap.PaintChunk(coord, vRow.Heightmap, c.heightRange)
	}

	log.Debug("streaming: spawned chunk", "coord", coord.String())
}

func (c *Coordinator) scheduleRetry(coord coords.XZ, now time.Time) {
	c.retries = append(c.retries, retryEntry{coord: coord, deadline: now.Add(c.retryDelay)})
}

// promoteExpiredRetries moves every retry whose deadline has passed
// back into the dirty set.
func (c *Coordinator) promoteExpiredRetries(now time.Time) {
	remaining := c.retries[:0]
	for _, r := range c.retries {
		if now.Before(r.deadline) {
			remaining = append(remaining, r)
			continue
		}
		c.dirty[r.coord] = struct{}{}
	}
	c.retries = remaining
}
