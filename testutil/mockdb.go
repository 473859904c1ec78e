package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// localSchema mirrors the taskdeck local database layout.
const localSchema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL,
	user_id TEXT NOT NULL,
	display_name TEXT,
	saved_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS task_snapshot (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	payload TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
`

// CreateInMemoryDB creates an in-memory SQLite database with the
// taskdeck schema for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// each pooled connection would get its own :memory: database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedSession inserts a session row directly, bypassing the store
func SeedSession(t *testing.T, db *sql.DB, token, userID, displayName string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO session (id, token, user_id, display_name, saved_at) VALUES (1, ?, ?, ?, datetime('now'))",
		token, userID, displayName,
	)
	if err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}
}
