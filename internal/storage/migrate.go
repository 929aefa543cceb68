package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager runs the embedded schema migrations.
type MigrationManager struct {
	m *migrate.Migrate
}

// MigrationStatus describes where a database is in the migration sequence.
type MigrationStatus struct {
	Version uint // 0 when nothing is applied
	Latest  uint
	Dirty   bool
}

// Pending reports whether migrations remain to be applied.
func (s MigrationStatus) Pending() bool { return s.Version < s.Latest }

func openMigrations() (source.Driver, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	return src, nil
}

// sqliteURL turns a file path into a golang-migrate sqlite URL. Windows
// paths get forward slashes and a leading slash.
func sqliteURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}
	return "sqlite://" + p
}

// NewMigrationManager opens its own connection to the database file at
// dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	src, err := openMigrations()
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, sqliteURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance for %s: %w", dbPath, err)
	}
	return &MigrationManager{m: m}, nil
}

// NewMigrationManagerWithDB runs migrations over an open connection.
// Closing the manager closes conn.
func NewMigrationManagerWithDB(conn *sql.DB) (*MigrationManager, error) {
	src, err := openMigrations()
	if err != nil {
		return nil, err
	}
	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &MigrationManager{m: m}, nil
}

// ignoreNoChange treats an already-current schema as success.
func ignoreNoChange(err error, format string, args ...any) error {
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Up applies all pending migrations.
func (mm *MigrationManager) Up() error {
	return ignoreNoChange(mm.m.Up(), "failed to apply migrations")
}

// Down rolls back the most recent migration.
func (mm *MigrationManager) Down() error {
	return ignoreNoChange(mm.m.Steps(-1), "failed to roll back migration")
}

// Steps applies n migrations, rolling back when n is negative.
func (mm *MigrationManager) Steps(n int) error {
	return ignoreNoChange(mm.m.Steps(n), "failed to migrate %d steps", n)
}

// Goto migrates up or down to version.
func (mm *MigrationManager) Goto(version uint) error {
	return ignoreNoChange(mm.m.Migrate(version), "failed to migrate to version %d", version)
}

// Force records version as applied without running anything. It is the way
// out of a dirty state after a failed migration.
func (mm *MigrationManager) Force(version int) error {
	if err := mm.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Version returns the applied version and whether it is dirty.
func (mm *MigrationManager) Version() (uint, bool, error) {
	version, dirty, err := mm.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Status compares the applied version with the newest embedded migration.
func (mm *MigrationManager) Status() (MigrationStatus, error) {
	version, dirty, err := mm.Version()
	if err != nil {
		return MigrationStatus{}, err
	}
	latest, err := latestMigration()
	if err != nil {
		return MigrationStatus{}, err
	}
	return MigrationStatus{Version: version, Latest: latest, Dirty: dirty}, nil
}

func latestMigration() (uint, error) {
	src, err := openMigrations()
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("failed to read first migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read migration after %d: %w", v, err)
		}
		v = next
	}
}

// Close releases the source and, for managers built on a connection, the
// connection itself.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.m.Close()
	return errors.Join(srcErr, dbErr)
}
