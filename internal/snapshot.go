package internal

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SaveSnapshot persists the current cache contents to the local
// database so `list` has something to show while offline. Provisional
// entries are excluded; they have no server identity to come back to.
func (c *TaskCache) SaveSnapshot(db *sql.DB) error {
	tasks := c.Tasks()

	tx, err := db.Begin()
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM task_snapshot"); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i, task := range tasks {
		if task.Provisional {
			continue
		}
		payload, err := json.Marshal(task)
		if err != nil {
			LogWarn("Skipping unserializable task %s in snapshot: %v", task.ID, err)
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO task_snapshot (id, position, payload, saved_at) VALUES (?, ?, ?, ?)",
			task.ID, i, string(payload), now,
		); err != nil {
			return &StorageError{Op: "write", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// LoadSnapshot replaces the cache contents with the last persisted
// snapshot. Presigned download URLs in the snapshot are stale by
// definition and are stripped on load.
func (c *TaskCache) LoadSnapshot(db *sql.DB) error {
	rows, err := db.Query("SELECT payload FROM task_snapshot ORDER BY position")
	if err != nil {
		return &StorageError{Op: "read", Err: err}
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return &StorageError{Op: "read", Err: err}
		}
		var task Task
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			LogWarn("Skipping corrupt snapshot row: %v", err)
			continue
		}
		for i := range task.Attachments {
			task.Attachments[i].DownloadURL = ""
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return &StorageError{Op: "read", Err: err}
	}

	c.ReconcileFull(tasks)
	return nil
}

// ClearSnapshot drops the persisted snapshot. Called on logout along
// with the cache itself.
func ClearSnapshot(db *sql.DB) error {
	if _, err := db.Exec("DELETE FROM task_snapshot"); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}
