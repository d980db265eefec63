package store

import (
	"context"
	"database/sql"
)

const insertChunkVertex = `-- name: InsertChunkVertex :execrows
INSERT OR IGNORE INTO chunk_vertex (grid_x, grid_z, heightmap, vertices, normals)
VALUES (?, ?, ?, ?, ?)
`

type InsertChunkVertexParams struct {
	GridX     int64
	GridZ     int64
	Heightmap []float32
	Vertices  []float32
	Normals   []float32
}

// InsertChunkVertex returns the number of rows actually inserted: 0
// means a row for this coordinate already existed.
func (q *Queries) InsertChunkVertex(ctx context.Context, arg InsertChunkVertexParams) (int64, error) {
	result, err := q.exec(ctx, insertChunkVertex,
		arg.GridX, arg.GridZ,
		encodeFloat32s(arg.Heightmap),
		encodeFloat32s(arg.Vertices),
		encodeFloat32s(arg.Normals),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertChunkMesh = `-- name: InsertChunkMesh :execrows
INSERT OR IGNORE INTO chunk_mesh (grid_x, grid_z, indices, materials)
VALUES (?, ?, ?, ?)
`

type InsertChunkMeshParams struct {
	GridX     int64
	GridZ     int64
	Indices   []uint32
	Materials []uint32
}

func (q *Queries) InsertChunkMesh(ctx context.Context, arg InsertChunkMeshParams) (int64, error) {
	result, err := q.exec(ctx, insertChunkMesh,
		arg.GridX, arg.GridZ,
		encodeUint32s(arg.Indices),
		encodeUint32s(arg.Materials),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getChunkVertex = `-- name: GetChunkVertex :one
SELECT grid_x, grid_z, heightmap, vertices, normals, created_at
FROM chunk_vertex WHERE grid_x = ? AND grid_z = ?
`

func (q *Queries) GetChunkVertex(ctx context.Context, gridX, gridZ int64) (ChunkVertex, error) {
	row := q.queryRow(ctx, getChunkVertex, gridX, gridZ)
	return scanChunkVertex(row)
}

const getChunkMesh = `-- name: GetChunkMesh :one
SELECT grid_x, grid_z, indices, materials, created_at
FROM chunk_mesh WHERE grid_x = ? AND grid_z = ?
`

func (q *Queries) GetChunkMesh(ctx context.Context, gridX, gridZ int64) (ChunkMesh, error) {
	row := q.queryRow(ctx, getChunkMesh, gridX, gridZ)
	return scanChunkMesh(row)
}

const listChunkVerticesInWindow = `-- name: ListChunkVerticesInWindow :many
SELECT grid_x, grid_z, heightmap, vertices, normals, created_at
FROM chunk_vertex
WHERE grid_x >= ? AND grid_x <= ? AND grid_z >= ? AND grid_z <= ?
`

type ListChunkVerticesInWindowParams struct {
	MinX, MaxX int64
	MinZ, MaxZ int64
}

func (q *Queries) ListChunkVerticesInWindow(ctx context.Context, arg ListChunkVerticesInWindowParams) ([]ChunkVertex, error) {
	rows, err := q.query(ctx, listChunkVerticesInWindow, arg.MinX, arg.MaxX, arg.MinZ, arg.MaxZ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChunkVertex
	for rows.Next() {
		v, err := scanChunkVertexRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const listChunkMeshesInWindow = `-- name: ListChunkMeshesInWindow :many
SELECT grid_x, grid_z, indices, materials, created_at
FROM chunk_mesh
WHERE grid_x >= ? AND grid_x <= ? AND grid_z >= ? AND grid_z <= ?
`

type ListChunkMeshesInWindowParams struct {
	MinX, MaxX int64
	MinZ, MaxZ int64
}

func (q *Queries) ListChunkMeshesInWindow(ctx context.Context, arg ListChunkMeshesInWindowParams) ([]ChunkMesh, error) {
	rows, err := q.query(ctx, listChunkMeshesInWindow, arg.MinX, arg.MaxX, arg.MinZ, arg.MaxZ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChunkMesh
	for rows.Next() {
		m, err := scanChunkMeshRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const getWorldConfig = `-- name: GetWorldConfig :one
SELECT config_value FROM world_config WHERE config_key = ?
`

func (q *Queries) GetWorldConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := q.queryRow(ctx, getWorldConfig, key).Scan(&value)
	return value, err
}

const setWorldConfig = `-- name: SetWorldConfig :exec
INSERT INTO world_config (config_key, config_value) VALUES (?, ?)
ON CONFLICT (config_key) DO UPDATE SET config_value = excluded.config_value
`

func (q *Queries) SetWorldConfig(ctx context.Context, key, value string) error {
	_, err := q.exec(ctx, setWorldConfig, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunkVertex(row *sql.Row) (ChunkVertex, error) {
	return scanChunkVertexGeneric(row)
}

func scanChunkVertexRows(row *sql.Rows) (ChunkVertex, error) {
	return scanChunkVertexGeneric(row)
}

func scanChunkVertexGeneric(row rowScanner) (ChunkVertex, error) {
	var v ChunkVertex
	var heightmapBlob, verticesBlob, normalsBlob []byte
	if err := row.Scan(&v.GridX, &v.GridZ, &heightmapBlob, &verticesBlob, &normalsBlob, &v.CreatedAt); err != nil {
		return ChunkVertex{}, err
	}

	var err error
	if v.Heightmap, err = decodeFloat32s(heightmapBlob); err != nil {
		return ChunkVertex{}, err
	}
	if v.Vertices, err = decodeFloat32s(verticesBlob); err != nil {
		return ChunkVertex{}, err
	}
	if v.Normals, err = decodeFloat32s(normalsBlob); err != nil {
		return ChunkVertex{}, err
	}
	return v, nil
}

func scanChunkMesh(row *sql.Row) (ChunkMesh, error) {
	return scanChunkMeshGeneric(row)
}

func scanChunkMeshRows(row *sql.Rows) (ChunkMesh, error) {
	return scanChunkMeshGeneric(row)
}

func scanChunkMeshGeneric(row rowScanner) (ChunkMesh, error) {
	var m ChunkMesh
	var indicesBlob, materialsBlob []byte
	if err := row.Scan(&m.GridX, &m.GridZ, &indicesBlob, &materialsBlob, &m.CreatedAt); err != nil {
		return ChunkMesh{}, err
	}

	var err error
	if m.Indices, err = decodeUint32s(indicesBlob); err != nil {
		return ChunkMesh{}, err
	}
	if m.Materials, err = decodeUint32s(materialsBlob); err != nil {
		return ChunkMesh{}, err
	}
	return m, nil
}
