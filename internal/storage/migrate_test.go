package storage

import (
	"path/filepath"
	"testing"
)

func TestMigrationManager_UpDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version != 2 {
		t.Errorf("Expected migration version 2, got %d", version)
	}

	// Up again is a no-op
	if err := mgr.Up(); err != nil {
		t.Errorf("Second Up() error = %v", err)
	}

	if err := mgr.Down(); err != nil {
		t.Fatalf("Failed to roll back: %v", err)
	}
	version, _, err = mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("Expected version 1 after rollback, got %d", version)
	}

	status, err := mgr.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Latest != 2 || !status.Pending() {
		t.Errorf("Status() = %+v, want latest 2 pending", status)
	}

	if err := mgr.Steps(1); err != nil {
		t.Fatalf("Steps(1) error = %v", err)
	}
	if status, _ := mgr.Status(); status.Pending() {
		t.Errorf("Status() = %+v, want up to date", status)
	}
}

func TestMigrationManager_StatusFresh(t *testing.T) {
	mgr, err := NewMigrationManager(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	status, err := mgr.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Version != 0 || status.Dirty || !status.Pending() {
		t.Errorf("Status() = %+v", status)
	}
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "decks.db")

	db, err := Open(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.Conn().Exec(`INSERT INTO cards (name) VALUES ('Opt')`); err != nil {
		t.Fatalf("insert error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// already migrated databases open cleanly
	db, err = Open(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	var n int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
