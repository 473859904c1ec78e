package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema holds the two logical stores: the single-row session table and
// the task snapshot used for offline reads.
const schema = `
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

// OpenDatabase opens (creating if needed) the local taskdeck database.
func OpenDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}
	db, err := sql.Open("sqlite", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("ping failed: %w", err)}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("schema setup failed: %w", err)}
	}
	return db, nil
}

// OpenMemoryDatabase opens a throwaway in-memory database with the
// taskdeck schema applied.
func OpenMemoryDatabase() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	// each pooled connection would get its own :memory: database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}
	return db, nil
}
