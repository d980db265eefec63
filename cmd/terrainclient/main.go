// Command terrainclient is an interactive debug driver for the
// Streaming Coordinator: arrow keys move a virtual camera through the
// world, the coordinator ticks on a timer, and the terminal UI shows
// the subscription window, dirty/retry queue depth, and a minimap.
//
// Without -server it runs fully offline, embedding its own Chunk
// Service over an in-memory store so the coordinator has something to
// subscribe to. With -server it dials a running server's websocket
// endpoint instead, exercising the real wire protocol.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/config"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/render"
	"github.com/voidterrain/terrain/internal/store"
	"github.com/voidterrain/terrain/internal/streaming"
	"github.com/voidterrain/terrain/internal/transport"
)

func main() {
	// config.Load() supplies this driver's defaults, as it does
	// cmd/server's: STREAM_RADIUS/STREAM_RETRY_DELAY/STREAM_TICK_INTERVAL
	// tune the coordinator (cmd/server reads none of them), and
	// TERRAIN_SEED is the same seed cmd/server uses, applied here in
	// offline mode. Flags remain so a single run can be tweaked ad hoc
	// without touching the environment.
	cfg := config.Load()

	server := flag.String("server", "", "websocket URL of a running server (e.g. ws://localhost:8080/ws); empty runs an embedded offline store")
	dbPath := flag.String("db", ":memory:", "sqlite path for offline mode")
	seed := flag.Int64("seed", cfg.Terrain.Seed, "sampler seed for offline mode")
	radius := flag.Int("radius", int(cfg.Stream.SubscriptionRadius), "subscription window radius, in chunks")
	retryDelay := flag.Duration("retry", cfg.Stream.RetryDelay, "retry delay for missing rows")
	tick := flag.Duration("tick", cfg.Stream.TickInterval, "coordinator tick interval")
	minimapSize := flag.Int("minimap", 256, "minimap texture side length in pixels; 0 disables it")
	logPath := flag.String("log", "terrainclient.log", "file to redirect logs to, so they don't corrupt the TUI")
	flag.Parse()

	teaLog, err := tea.LogToFile(*logPath, "terrainclient")
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer teaLog.Close()

	logFile, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	source, closeSource, err := buildSource(*server, *dbPath, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build replication source: %v\n", err)
		os.Exit(1)
	}
	defer closeSource()

	fake := render.NewFake()
	coordinator := streaming.NewCoordinator(source, fake, int32(*radius), *retryDelay, heightfield.HeightRange, *minimapSize)

	program := tea.NewProgram(newModel(coordinator, fake, *tick), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "terrainclient: %v\n", err)
		os.Exit(1)
	}
}

// buildSource constructs a ReplicationSource either over a dialed
// websocket client or over an embedded, in-process store+chunk
// service, and returns a matching cleanup function.
func buildSource(serverURL, dbPath string, seed int64) (streaming.ReplicationSource, func(), error) {
	if serverURL != "" {
		client, err := transport.Dial(serverURL)
		if err != nil {
			return nil, nil, fmt.Errorf("dial %s: %w", serverURL, err)
		}
		return streaming.NewTransportSource(client), func() { client.Close() }, nil
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := store.RunMigrations(db, "file://./internal/store/migrations"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	st := store.NewSQLiteStore(db)
	svc := chunkservice.NewService(seed, st)
	return streaming.NewStoreSource(st, svc), func() { db.Close() }, nil
}
