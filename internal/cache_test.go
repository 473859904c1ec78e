package internal

import (
	"strings"
	"testing"
	"time"
)

func TestTaskCache_ApplyUpdate_InsertsAndReplaces(t *testing.T) {
	c := NewTaskCache()

	c.ApplyUpdate(&Task{ID: "t1", Title: "First"})
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}

	// update for an unknown id inserts at the front
	c.ApplyUpdate(&Task{ID: "t2", Title: "Second"})
	tasks := c.Tasks()
	if tasks[0].ID != "t2" || tasks[1].ID != "t1" {
		t.Errorf("Tasks() order = %q, %q, want t2, t1", tasks[0].ID, tasks[1].ID)
	}

	// replacing an existing entry keeps its position
	c.ApplyUpdate(&Task{ID: "t1", Title: "First, renamed"})
	tasks = c.Tasks()
	if c.Len() != 2 {
		t.Fatalf("Len() = %d after replace, want 2", c.Len())
	}
	if tasks[1].Title != "First, renamed" {
		t.Errorf("replaced task title = %q, want %q", tasks[1].Title, "First, renamed")
	}
}

func TestTaskCache_ApplyUpdate_Idempotent(t *testing.T) {
	c := NewTaskCache()
	task := &Task{ID: "t1", Title: "Same"}

	c.ApplyUpdate(task)
	c.ApplyUpdate(task)
	c.ApplyUpdate(task)

	if c.Len() != 1 {
		t.Errorf("Len() = %d after repeated applies, want 1", c.Len())
	}
}

func TestTaskCache_ApplyDelete_UnknownIsNoop(t *testing.T) {
	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1"})

	c.ApplyDelete("never-existed")
	c.ApplyDelete("t1")
	c.ApplyDelete("t1")

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestTaskCache_OptimisticCreateLifecycle(t *testing.T) {
	c := NewTaskCache()

	localID := c.ApplyOptimisticCreate(TaskDraft{
		Title:    "Draft",
		Priority: PriorityMedium,
	})
	if !strings.HasPrefix(localID, "local-") {
		t.Errorf("local id = %q, want local- prefix", localID)
	}
	local := c.Get(localID)
	if local == nil {
		t.Fatal("provisional entry not in cache")
	}
	if !local.Provisional {
		t.Error("provisional entry not flagged")
	}
	if local.Status != StatusPending {
		t.Errorf("provisional status = %q, want %q", local.Status, StatusPending)
	}

	c.ReconcileCreate(localID, &Task{ID: "t1", Title: "Draft"})

	if c.Get(localID) != nil {
		t.Error("provisional entry survived reconciliation")
	}
	if c.Get("t1") == nil {
		t.Error("server entry missing after reconciliation")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after reconciliation, want 1", c.Len())
	}
}

func TestTaskCache_ReconcileCreate_PushEventRace(t *testing.T) {
	c := NewTaskCache()

	localID := c.ApplyOptimisticCreate(TaskDraft{Title: "Racy", Priority: PriorityLow})

	// the push event echoing the create lands before the POST response
	c.ApplyUpdate(&Task{ID: "t1", Title: "Racy"})
	c.ReconcileCreate(localID, &Task{ID: "t1", Title: "Racy"})

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (no duplicate)", c.Len())
	}
	if c.Get("t1") == nil {
		t.Error("server entry missing")
	}
	if c.Get(localID) != nil {
		t.Error("provisional entry survived")
	}
}

func TestTaskCache_DiscardOptimistic(t *testing.T) {
	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1"})

	localID := c.ApplyOptimisticCreate(TaskDraft{Title: "Doomed", Priority: PriorityLow})
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.DiscardOptimistic(localID)
	if c.Len() != 1 {
		t.Errorf("Len() = %d after discard, want 1", c.Len())
	}
	if c.Get("t1") == nil {
		t.Error("unrelated entry lost on discard")
	}

	// discarding twice is harmless
	c.DiscardOptimistic(localID)
}

func TestTaskCache_ReconcileFull(t *testing.T) {
	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "gone", Title: "Stale"})

	c.ReconcileFull([]*Task{
		{ID: "t1", Title: "One"},
		nil,
		{ID: "t2", Title: "Two"},
		{ID: "t1", Title: "One, newer"},
	})

	if c.Get("gone") != nil {
		t.Error("stale entry survived full reconciliation")
	}
	tasks := c.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("Tasks() returned %d entries, want 2", len(tasks))
	}
	if tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Errorf("order = %q, %q, want t1, t2", tasks[0].ID, tasks[1].ID)
	}
	if tasks[0].Title != "One, newer" {
		t.Errorf("duplicate id kept older payload: %q", tasks[0].Title)
	}
}

func TestTaskCache_AssignedTo(t *testing.T) {
	c := NewTaskCache()
	c.ReconcileFull([]*Task{
		{ID: "t1", Assignees: []Assignee{{ID: "u1"}}},
		{ID: "t2", Assignees: []Assignee{{ID: "u2"}}},
		{ID: "t3", Assignees: []Assignee{{ID: "u1"}, {ID: "u2"}}},
	})

	mine := c.AssignedTo("u1")
	if len(mine) != 2 {
		t.Fatalf("AssignedTo(u1) returned %d tasks, want 2", len(mine))
	}
	if mine[0].ID != "t1" || mine[1].ID != "t3" {
		t.Errorf("AssignedTo(u1) = %q, %q, want t1, t3", mine[0].ID, mine[1].ID)
	}

	// reassignment moves the task out of the view on the next read
	c.ApplyUpdate(&Task{ID: "t1", Assignees: []Assignee{{ID: "u2"}}})
	mine = c.AssignedTo("u1")
	if len(mine) != 1 || mine[0].ID != "t3" {
		t.Errorf("AssignedTo(u1) after reassignment = %v, want only t3", taskIDs(mine))
	}
}

// The full create path as the backend actually answers it: the POST
// response uses the `_id` shape, a later list uses `id`, and both must
// land on the same cache entry.
func TestTaskCache_CreateNormalizeReconcileFlow(t *testing.T) {
	n := NewNormalizer()
	c := NewTaskCache()

	localID := c.ApplyOptimisticCreate(TaskDraft{
		Title:     "Ship report",
		Priority:  PriorityUrgent,
		Assignees: []string{"u1"},
	})

	server, err := n.NormalizeTask(RawObject{
		"_id":       "t1",
		"title":     "Ship report",
		"priority":  "urgent",
		"status":    "pending",
		"assignees": []interface{}{"u1"},
	})
	if err != nil {
		t.Fatalf("NormalizeTask() error = %v", err)
	}
	c.ReconcileCreate(localID, server)

	mine := c.AssignedTo("u1")
	if len(mine) != 1 {
		t.Fatalf("AssignedTo(u1) returned %d tasks, want 1", len(mine))
	}
	if mine[0].ID != "t1" {
		t.Errorf("task id = %q, want t1", mine[0].ID)
	}
	if mine[0].Provisional {
		t.Error("reconciled task still provisional")
	}

	// the same entity arriving again via a list refetch changes nothing
	refetched, err := n.NormalizeTask(RawObject{
		"id":        "t1",
		"title":     "Ship report",
		"priority":  "urgent",
		"status":    "pending",
		"assignees": []interface{}{"u1"},
	})
	if err != nil {
		t.Fatalf("NormalizeTask() error = %v", err)
	}
	c.ApplyUpdate(refetched)
	if c.Len() != 1 {
		t.Errorf("Len() = %d after refetch, want 1", c.Len())
	}
}

func TestTaskCache_Clear(t *testing.T) {
	c := NewTaskCache()
	c.ApplyUpdate(&Task{ID: "t1"})
	c.ApplyUpdate(&Task{ID: "t2"})

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", c.Len())
	}
	if got := c.Tasks(); len(got) != 0 {
		t.Errorf("Tasks() = %v after Clear(), want empty", taskIDs(got))
	}
}

func TestTaskCache_Summarize(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	c := NewTaskCache()
	c.ReconcileFull([]*Task{
		{ID: "t1", Status: StatusPending, Priority: PriorityUrgent, DueDate: now.Add(-24 * time.Hour)},
		{ID: "t2", Status: StatusInProgress, Priority: PriorityMedium},
		{ID: "t3", Status: StatusCompleted, Priority: PriorityUrgent, DueDate: now.Add(-time.Hour)},
		{ID: "t4", Status: StatusPending, Priority: PriorityLow, DueDate: now.Add(time.Hour)},
	})

	sum := c.Summarize(now)
	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4", sum.Total)
	}
	if sum.ByStatus[StatusPending] != 2 {
		t.Errorf("ByStatus[pending] = %d, want 2", sum.ByStatus[StatusPending])
	}
	if sum.ByPriority[PriorityUrgent] != 2 {
		t.Errorf("ByPriority[urgent] = %d, want 2", sum.ByPriority[PriorityUrgent])
	}
	// completed tasks are never overdue, future due dates are not either
	if sum.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", sum.Overdue)
	}
}

func taskIDs(tasks []*Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}
