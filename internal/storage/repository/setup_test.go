package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	schema := `
		PRAGMA foreign_keys = ON;

		CREATE TABLE cards (
			name TEXT PRIMARY KEY,
			type_line TEXT NOT NULL DEFAULT '',
			is_land INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE decks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE deck_cards (
			deck_id INTEGER NOT NULL,
			card_name TEXT NOT NULL,
			PRIMARY KEY (deck_id, card_name),
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
		);

		CREATE TABLE deck_dropped_cards (
			deck_id INTEGER NOT NULL,
			card_name TEXT NOT NULL,
			PRIMARY KEY (deck_id, card_name),
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
		);

		CREATE TABLE tags (
			label TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (label, name)
		);

		CREATE TABLE tag_edges (
			label TEXT NOT NULL,
			position INTEGER NOT NULL,
			child TEXT NOT NULL,
			parent TEXT NOT NULL,
			PRIMARY KEY (label, child, parent)
		);

		CREATE TABLE card_tags (
			label TEXT NOT NULL,
			card_name TEXT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (label, card_name, tag)
		);

		CREATE TABLE sample_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			n INTEGER NOT NULL,
			f_true REAL NOT NULL,
			f_half REAL NOT NULL,
			no_lands INTEGER NOT NULL DEFAULT 0,
			num_true INTEGER NOT NULL,
			num_half INTEGER NOT NULL,
			num_false INTEGER NOT NULL,
			num_decks INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}
