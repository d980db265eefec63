package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
)

// LoggingQueries wraps Queries to add debug tracing around every
// statement, in the usual shape of a logging wrapper over generated
// queries.
type LoggingQueries struct {
	*Queries
}

// NewLoggingQueries wraps a DBTX in a logging Queries value.
func NewLoggingQueries(db DBTX) *LoggingQueries {
	return &LoggingQueries{Queries: New(db)}
}

func (lq *LoggingQueries) WithTx(tx *sql.Tx) *LoggingQueries {
	return &LoggingQueries{Queries: lq.Queries.WithTx(tx)}
}

func (lq *LoggingQueries) logQuery(name string, start time.Time, err error, kv ...interface{}) {
	kv = append(kv, "query", name, "duration", time.Since(start))
	if err != nil {
		kv = append(kv, "error", err)
		log.Debug("chunk store query failed", kv...)
		return
	}
	log.Debug("chunk store query executed", kv...)
}

func (lq *LoggingQueries) InsertChunkVertex(ctx context.Context, arg InsertChunkVertexParams) (int64, error) {
	start := time.Now()
	rows, err := lq.Queries.InsertChunkVertex(ctx, arg)
	lq.logQuery("InsertChunkVertex", start, err, "grid_x", arg.GridX, "grid_z", arg.GridZ, "rows_affected", rows)
	return rows, err
}

func (lq *LoggingQueries) InsertChunkMesh(ctx context.Context, arg InsertChunkMeshParams) (int64, error) {
	start := time.Now()
	rows, err := lq.Queries.InsertChunkMesh(ctx, arg)
	lq.logQuery("InsertChunkMesh", start, err, "grid_x", arg.GridX, "grid_z", arg.GridZ, "rows_affected", rows)
	return rows, err
}

func (lq *LoggingQueries) GetChunkVertex(ctx context.Context, gridX, gridZ int64) (ChunkVertex, error) {
	start := time.Now()
	v, err := lq.Queries.GetChunkVertex(ctx, gridX, gridZ)
	lq.logQuery("GetChunkVertex", start, err, "grid_x", gridX, "grid_z", gridZ)
	return v, err
}

func (lq *LoggingQueries) GetChunkMesh(ctx context.Context, gridX, gridZ int64) (ChunkMesh, error) {
	start := time.Now()
	m, err := lq.Queries.GetChunkMesh(ctx, gridX, gridZ)
	lq.logQuery("GetChunkMesh", start, err, "grid_x", gridX, "grid_z", gridZ)
	return m, err
}

func (lq *LoggingQueries) ListChunkVerticesInWindow(ctx context.Context, arg ListChunkVerticesInWindowParams) ([]ChunkVertex, error) {
	start := time.Now()
	rows, err := lq.Queries.ListChunkVerticesInWindow(ctx, arg)
	lq.logQuery("ListChunkVerticesInWindow", start, err, "min_x", arg.MinX, "max_x", arg.MaxX, "min_z", arg.MinZ, "max_z", arg.MaxZ, "row_count", len(rows))
	return rows, err
}

func (lq *LoggingQueries) ListChunkMeshesInWindow(ctx context.Context, arg ListChunkMeshesInWindowParams) ([]ChunkMesh, error) {
	start := time.Now()
	rows, err := lq.Queries.ListChunkMeshesInWindow(ctx, arg)
	lq.logQuery("ListChunkMeshesInWindow", start, err, "min_x", arg.MinX, "max_x", arg.MaxX, "min_z", arg.MinZ, "max_z", arg.MaxZ, "row_count", len(rows))
	return rows, err
}

func (lq *LoggingQueries) GetWorldConfig(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := lq.Queries.GetWorldConfig(ctx, key)
	lq.logQuery("GetWorldConfig", start, err, "config_key", key)
	return value, err
}

func (lq *LoggingQueries) SetWorldConfig(ctx context.Context, key, value string) error {
	start := time.Now()
	err := lq.Queries.SetWorldConfig(ctx, key, value)
	lq.logQuery("SetWorldConfig", start, err, "config_key", key)
	return err
}
