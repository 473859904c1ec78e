package internal

import (
	"testing"
	"time"

	"github.com/Vishnu1805/taskdeck/testutil"
)

func TestTaskCache_SnapshotRoundTrip(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	c := NewTaskCache()
	c.ReconcileFull([]*Task{
		{ID: "t1", Title: "First", Priority: PriorityUrgent, Status: StatusPending, DueDate: due,
			Assignees: []Assignee{{ID: "u1", Name: "Asha"}}},
		{ID: "t2", Title: "Second", Status: StatusCompleted},
	})

	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	restored := NewTaskCache()
	if err := restored.LoadSnapshot(db); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	tasks := restored.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("restored %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Errorf("restored order = %q, %q, want t1, t2", tasks[0].ID, tasks[1].ID)
	}
	if tasks[0].Title != "First" || tasks[0].Priority != PriorityUrgent {
		t.Errorf("restored task = %+v", tasks[0])
	}
	if !tasks[0].DueDate.Equal(due) {
		t.Errorf("restored due date = %v, want %v", tasks[0].DueDate, due)
	}
	if len(tasks[0].Assignees) != 1 || tasks[0].Assignees[0].Name != "Asha" {
		t.Errorf("restored assignees = %+v", tasks[0].Assignees)
	}
}

func TestTaskCache_SnapshotSkipsProvisional(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1", Title: "Real"})
	c.ApplyOptimisticCreate(TaskDraft{Title: "In flight", Priority: PriorityLow})

	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	restored := NewTaskCache()
	if err := restored.LoadSnapshot(db); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if restored.Len() != 1 {
		t.Fatalf("restored %d tasks, want 1", restored.Len())
	}
	if restored.Get("t1") == nil {
		t.Error("confirmed task missing from snapshot")
	}
}

func TestTaskCache_SnapshotStripsPresignedURLs(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1", Title: "With file", Attachments: []Attachment{
		{DisplayName: "report.pdf", ObjectKey: "uploads/report.pdf", DownloadURL: "https://blob/report.pdf?sig=stale"},
	}})

	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	restored := NewTaskCache()
	if err := restored.LoadSnapshot(db); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	att := restored.Get("t1").Attachments[0]
	if att.DownloadURL != "" {
		t.Errorf("stale presigned URL survived the snapshot: %q", att.DownloadURL)
	}
	if att.ObjectKey != "uploads/report.pdf" {
		t.Errorf("durable object key lost: %q", att.ObjectKey)
	}
}

func TestTaskCache_SnapshotReplacesPrevious(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "old"})
	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	c.Clear()
	c.ApplyUpdate(&Task{ID: "new"})
	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	restored := NewTaskCache()
	if err := restored.LoadSnapshot(db); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if restored.Get("old") != nil {
		t.Error("previous snapshot contents survived")
	}
	if restored.Get("new") == nil {
		t.Error("current snapshot contents missing")
	}
}

func TestClearSnapshot(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)

	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1"})
	if err := c.SaveSnapshot(db); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	if err := ClearSnapshot(db); err != nil {
		t.Fatalf("ClearSnapshot() error = %v", err)
	}

	restored := NewTaskCache()
	if err := restored.LoadSnapshot(db); err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if restored.Len() != 0 {
		t.Errorf("restored %d tasks after ClearSnapshot(), want 0", restored.Len())
	}
}
