package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsPath = "db/migrations"

// Migrator applies versioned SQL migrations against the ledger schema.
// GORM's AutoMigrate remains the fallback when no migration files ship
// with the deployment.
type Migrator struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	// overridable in tests
	waitAttempts int
	waitInterval time.Duration
}

// NewMigrator creates a migrator reading migration files from path. An empty
// path falls back to db/migrations relative to the working directory.
func NewMigrator(db *sql.DB, path string) *Migrator {
	if path == "" {
		path = defaultMigrationsPath
	}
	return &Migrator{
		db:           db,
		path:         path,
		logger:       slog.Default(),
		waitAttempts: 30,
		waitInterval: 2 * time.Second,
	}
}

// WaitReady blocks until the database answers pings or the attempt budget
// runs out. Containerized deployments start the database and the API
// together, so the first pings routinely fail.
func (m *Migrator) WaitReady() error {
	for attempt := 1; attempt <= m.waitAttempts; attempt++ {
		err := m.db.Ping()
		if err == nil {
			return nil
		}
		m.logger.Warn("database not ready",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", m.waitAttempts),
			slog.String("error", err.Error()),
		)
		time.Sleep(m.waitInterval)
	}
	return fmt.Errorf("database not ready after %d attempts", m.waitAttempts)
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	absPath, err := filepath.Abs(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	return migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", absPath), "postgres", driver)
}

// Up applies all pending migrations. A missing migrations directory is not
// an error; the caller falls back to AutoMigrate. A dirty schema version is
// forced clean before applying, matching what a manual recovery would do.
func (m *Migrator) Up() error {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.logger.Info("no migrations directory, skipping", slog.String("path", m.path))
		return nil
	}

	inst, err := m.instance()
	if err != nil {
		return err
	}

	version, dirty, err := inst.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		m.logger.Warn("schema is dirty, forcing version", slog.Uint64("version", uint64(version)))
		if err := inst.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force schema version: %w", err)
		}
	}

	switch err := inst.Up(); {
	case err == nil:
		newVersion, _, verr := inst.Version()
		if verr != nil {
			return fmt.Errorf("failed to read schema version after migrating: %w", verr)
		}
		m.logger.Info("migrations applied", slog.Uint64("version", uint64(newVersion)))
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("schema up to date", slog.Uint64("version", uint64(version)))
	default:
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Version reports the current schema version and whether it is dirty.
func (m *Migrator) Version() (uint, bool, error) {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		return 0, false, fmt.Errorf("migrations directory not found at %s", m.path)
	}

	inst, err := m.instance()
	if err != nil {
		return 0, false, err
	}
	return inst.Version()
}

// MigrateIfEnabled runs SQL migrations when AUTO_MIGRATE=true. It reports
// whether migrations actually ran so the caller knows if AutoMigrate is
// still needed.
func MigrateIfEnabled(db *sql.DB) (bool, error) {
	if os.Getenv("AUTO_MIGRATE") != "true" {
		return false, nil
	}

	m := NewMigrator(db, os.Getenv("MIGRATIONS_PATH"))
	if err := m.WaitReady(); err != nil {
		return false, fmt.Errorf("database readiness check failed: %w", err)
	}
	if err := m.Up(); err != nil {
		return false, fmt.Errorf("migration execution failed: %w", err)
	}
	return true, nil
}
