package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const testSchema = `
	CREATE TABLE cards (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		card_type TEXT NOT NULL,
		faction TEXT NOT NULL DEFAULT 'Neutral',
		cost TEXT NOT NULL DEFAULT '',
		attack INTEGER NOT NULL DEFAULT 0,
		health INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		art_ref TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE decks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		modified_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE deck_cards (
		deck_id TEXT NOT NULL,
		card_id INTEGER NOT NULL,
		board TEXT NOT NULL CHECK (board IN ('main', 'stage')),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (deck_id, card_id, board)
	);

	CREATE TABLE collection (
		card_id INTEGER PRIMARY KEY,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// setupTestDB opens an in-memory database with the full schema. The pool is
// pinned to one connection so every query sees the same memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
