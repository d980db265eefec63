package store

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending migration under sourceURL (a
// "file://" URL pointing at internal/store/migrations) to db.
func RunMigrations(db *sql.DB, sourceURL string) error {
	log.Debug("creating migration driver")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("store: create migration driver: %w", err)
	}

	log.Debug("creating migration instance", "source", sourceURL)
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("store: create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("store: run migrations: %w", err)
	} else if err == migrate.ErrNoChange {
		log.Debug("no new migrations to apply")
	} else {
		log.Debug("migrations applied successfully")
	}

	return nil
}
