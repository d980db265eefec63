package transport

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/store"
)

// subscriptionSQL builds the predicate text a client sends to open a
// window subscription over table, in the literal shape
// parseSubscriptionSQL accepts.
func subscriptionSQL(table string, bounds coords.Bounds) string {
	return fmt.Sprintf(
		"SELECT * FROM %s WHERE grid_x >= %d AND grid_x <= %d AND grid_z >= %d AND grid_z <= %d",
		table, bounds.MinX, bounds.MaxX, bounds.MinZ, bounds.MaxZ,
	)
}

var predicatePattern = regexp.MustCompile(
	`^SELECT \* FROM (chunk_vertex|chunk_mesh) WHERE grid_x >= (-?\d+) AND grid_x <= (-?\d+) AND grid_z >= (-?\d+) AND grid_z <= (-?\d+)$`,
)

// parseSubscriptionSQL extracts the table name and window bounds from a
// predicate string previously built by subscriptionSQL. It rejects
// anything else rather than attempting general SQL parsing: the store's
// subscription language is this one fixed shape.
func parseSubscriptionSQL(sql string) (table string, bounds coords.Bounds, err error) {
	m := predicatePattern.FindStringSubmatch(sql)
	if m == nil {
		return "", coords.Bounds{}, fmt.Errorf("transport: unrecognized subscription predicate %q", sql)
	}

	table = m[1]
	if table != store.TableChunkVertex && table != store.TableChunkMesh {
		return "", coords.Bounds{}, fmt.Errorf("transport: unknown table %q", table)
	}

	vals := make([]int64, 4)
	for i, s := range m[2:6] {
		v, convErr := strconv.ParseInt(s, 10, 32)
		if convErr != nil {
			return "", coords.Bounds{}, fmt.Errorf("transport: bad integer %q in predicate: %w", s, convErr)
		}
		vals[i] = v
	}

	bounds = coords.Bounds{
		MinX: int32(vals[0]), MaxX: int32(vals[1]),
		MinZ: int32(vals[2]), MaxZ: int32(vals[3]),
	}
	return table, bounds, nil
}
