package transport

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/coords"
	"github.com/voidterrain/terrain/internal/store"
)

func newTestHub(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.RunMigrations(db, "file://../store/migrations"))

	st := store.NewSQLiteStore(db)
	svc := chunkservice.NewService(42, st)
	hub := NewHub(st, svc)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return srv
}

func dialTestServer(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, err := Dial(wsURL)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSubscribeReceivesAppliedVertex(t *testing.T) {
	srv := newTestHub(t)
	client := dialTestServer(t, srv)

	sub := client.SubscribeWindow(store.TableChunkVertex, coords.WindowAround(coords.New(0, 0), 2))
	defer sub.Unsubscribe()

	client.RequestChunk(coords.New(0, 0))

	select {
	case applied := <-sub.Events:
		assert.Equal(t, coords.New(0, 0), applied.Coord)
		require.NotNil(t, applied.Vertex)
		assert.NotEmpty(t, applied.Vertex.Vertices)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for applied vertex row")
	}
}

func TestSubscribeIgnoresRowsOutsideWindow(t *testing.T) {
	srv := newTestHub(t)
	client := dialTestServer(t, srv)

	sub := client.SubscribeWindow(store.TableChunkVertex, coords.WindowAround(coords.New(0, 0), 1))
	defer sub.Unsubscribe()

	client.RequestChunk(coords.New(50, 50))

	select {
	case applied := <-sub.Events:
		t.Fatalf("unexpected event delivered outside window: %+v", applied)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSubscribeRejectsMalformedPredicate(t *testing.T) {
	srv := newTestHub(t)
	client := dialTestServer(t, srv)

	client.mu.Lock()
	client.nextID++
	id := "1"
	sub := &clientSub{events: make(chan Applied, 1), errs: make(chan string, 1)}
	client.subs[id] = sub
	client.mu.Unlock()

	client.sendJSON(ClientMessage{Type: ClientMsgSubscribe, SubscriptionID: id, SQL: "DROP TABLE chunk_vertex"})

	select {
	case msg := <-sub.errs:
		assert.Contains(t, msg, "unrecognized subscription predicate")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rejection error")
	}
}
