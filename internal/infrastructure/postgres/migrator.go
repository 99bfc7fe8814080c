package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// ErrDirtyMigration means a previous migration failed halfway. It has to be
// repaired by hand before the ledger schema is touched again.
var ErrDirtyMigration = errors.New("database schema is dirty")

// MigrationStatus is the schema version recorded by golang-migrate.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied is false on a database no migration has run against.
	Applied bool
}

func newMigrate(databaseURL, migrationsPath string) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations at %s: %w", migrationsPath, err)
	}
	return m, nil
}

func status(m *migrate.Migrate) (MigrationStatus, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("read migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(databaseURL, migrationsPath string, logger zerolog.Logger) error {
	m, err := newMigrate(databaseURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	before, err := status(m)
	if err != nil {
		return err
	}
	if before.Dirty {
		return fmt.Errorf("%w at version %d", ErrDirtyMigration, before.Version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Uint("version", before.Version).Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	after, err := status(m)
	if err != nil {
		return err
	}
	logger.Info().
		Uint("from", before.Version).
		Uint("version", after.Version).
		Msg("database migrations: applied")
	return nil
}

// RunMigrationsDown rolls back the last migration.
func RunMigrationsDown(databaseURL, migrationsPath string, logger zerolog.Logger) error {
	m, err := newMigrate(databaseURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}

	after, err := status(m)
	if err != nil {
		return err
	}
	logger.Info().Uint("version", after.Version).Msg("database migrations: rolled back one step")
	return nil
}

// MigrationVersion reports the current schema version without changing it.
func MigrationVersion(databaseURL, migrationsPath string) (MigrationStatus, error) {
	m, err := newMigrate(databaseURL, migrationsPath)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	return status(m)
}
