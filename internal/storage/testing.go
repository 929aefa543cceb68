package storage

import (
	"database/sql"
	"testing"
)

// NewTestDB wraps an existing connection in a DB. Callers own the schema.
func NewTestDB(sqlDB *sql.DB) *DB {
	return &DB{conn: sqlDB}
}

// OpenTestService opens a migrated in-memory database and registers cleanup
// on t. It is exported for use in other package tests.
func OpenTestService(t testing.TB) *Service {
	t.Helper()

	db, err := Open(DefaultConfig(MemoryPath))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewService(db)
}
