package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"

	"github.com/charmbracelet/log"

	"github.com/voidterrain/terrain/internal/api"
	"github.com/voidterrain/terrain/internal/chunkservice"
	"github.com/voidterrain/terrain/internal/config"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/store"
	"github.com/voidterrain/terrain/internal/transport"
)

func main() {
	cfg := config.Load()
	log.Debug("configuration loaded", "server_port", cfg.Server.Port, "db_path", cfg.Database.Path, "seed", cfg.Terrain.Seed)

	if cfg.Terrain.ChunkSize != heightfield.ChunkSize {
		log.Fatal("configured chunk size does not match the compiled sampler/extractor chunk size", "configured", cfg.Terrain.ChunkSize, "compiled", heightfield.ChunkSize)
	}

	setupLogging(cfg.Logging)

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	if err := store.RunMigrations(db, "file://./internal/store/migrations"); err != nil {
		log.Fatal("failed to run database migrations", "error", err)
	}
	log.Debug("database migrations completed")

	st := store.NewSQLiteStore(db)
	chunks := chunkservice.NewService(cfg.Terrain.Seed, st)
	hub := transport.NewHub(st, chunks)
	handler := api.NewHandler(chunks)
	router := api.SetupRoutes(handler, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("starting voidterrain server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down server", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}

func setupLogging(cfg config.LoggingConfig) {
	switch cfg.Level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warn("invalid log level, using info", "level", cfg.Level)
		log.SetLevel(log.InfoLevel)
	}

	if cfg.Format == "pretty" || !cfg.Structured {
		log.SetReportCaller(true)
		log.SetReportTimestamp(true)
	}

	log.SetPrefix("[voidterrain] ")
}

func initializeDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database initialized", "path", cfg.Path)
	return db, nil
}
