package internal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskCache is the single mutable source of truth for the task list.
// It is an owned, constructed instance whose lifetime is tied to the
// authenticated session; all mutation goes through its methods.
//
// Updates arrive from three independent sources (the caller's own
// request, a push event echoing the same change, and periodic full
// refetches). Merge-by-id makes every apply idempotent: the most
// recently applied normalized entity wins regardless of source. The
// backend exposes no version field, so concurrent edits from two
// clients resolve last-write-wins; that is an accepted limitation, not
// something the cache papers over.
type TaskCache struct {
	mu    sync.Mutex
	order []string
	tasks map[string]*Task
}

// NewTaskCache creates an empty task cache.
func NewTaskCache() *TaskCache {
	return &TaskCache{tasks: make(map[string]*Task)}
}

// ApplyOptimisticCreate inserts a provisional task so the UI reflects
// the action before the network round-trip completes. Returns the local
// id used to reconcile or discard the entry later.
func (c *TaskCache) ApplyOptimisticCreate(draft TaskDraft) string {
	localID := "local-" + uuid.NewString()
	assignees := make([]Assignee, 0, len(draft.Assignees))
	for _, id := range FilterAssigneeIDs(draft.Assignees) {
		assignees = append(assignees, Assignee{ID: id})
	}
	task := &Task{
		ID:          localID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		DueDate:     draft.DueDate,
		Status:      StatusPending,
		Assignees:   assignees,
		Attachments: draft.Attachments,
		CreatedAt:   time.Now().UTC(),
		Provisional: true,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertFront(task)
	return localID
}

// ReconcileCreate replaces the provisional entry with the authoritative
// server entity. If the final id is already present (a push event beat
// the POST response) the two collapse into one entry, never two.
func (c *TaskCache) ReconcileCreate(localID string, server *Task) {
	if server == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.remove(localID)
	if _, exists := c.tasks[server.ID]; exists {
		c.tasks[server.ID] = server
		return
	}
	if pos < 0 {
		pos = 0
	}
	c.insertAt(pos, server)
}

// DiscardOptimistic drops a provisional entry after a failed create.
// Unknown ids are a no-op.
func (c *TaskCache) DiscardOptimistic(localID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(localID)
}

// ApplyUpdate replaces the entry for the task's id, or inserts it when
// missing. Out-of-order and missing-create deliveries are tolerated;
// applying the same task twice is a no-op.
func (c *TaskCache) ApplyUpdate(task *Task) {
	if task == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tasks[task.ID]; exists {
		c.tasks[task.ID] = task
		return
	}
	c.insertFront(task)
}

// ApplyDelete removes the entry. A delete for an unknown id is a no-op,
// not an error.
func (c *TaskCache) ApplyDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

// ReconcileFull replaces the cache contents wholesale with a freshly
// fetched list. Used after reconnection, or whenever a known-good
// baseline is needed.
func (c *TaskCache) ReconcileFull(tasks []*Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.tasks = make(map[string]*Task, len(tasks))
	for _, task := range tasks {
		if task == nil {
			continue
		}
		if _, exists := c.tasks[task.ID]; exists {
			c.tasks[task.ID] = task
			continue
		}
		c.order = append(c.order, task.ID)
		c.tasks[task.ID] = task
	}
}

// Get returns the task for id, or nil.
func (c *TaskCache) Get(id string) *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks[id]
}

// Tasks returns the tasks in cache order. The returned slice is the
// caller's to keep.
func (c *TaskCache) Tasks() []*Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Task, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tasks[id])
	}
	return out
}

// AssignedTo derives the relevance view: tasks where userID appears in
// the assignees. Derived on demand from the cache, never a second
// mutable collection, so the two can not diverge.
func (c *TaskCache) AssignedTo(userID string) []*Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Task
	for _, id := range c.order {
		if task := c.tasks[id]; task.AssignedTo(userID) {
			out = append(out, task)
		}
	}
	return out
}

// Len returns the number of cached tasks.
func (c *TaskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Clear empties the cache. Called on logout.
func (c *TaskCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.tasks = make(map[string]*Task)
}

// Summary aggregates the cache for the analytics view.
type Summary struct {
	Total      int
	ByStatus   map[Status]int
	ByPriority map[Priority]int
	Overdue    int
}

// Summarize derives status/priority counts and the overdue total.
func (c *TaskCache) Summarize(now time.Time) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := Summary{
		ByStatus:   make(map[Status]int),
		ByPriority: make(map[Priority]int),
	}
	for _, id := range c.order {
		task := c.tasks[id]
		sum.Total++
		if task.Status != "" {
			sum.ByStatus[task.Status]++
		}
		if task.Priority != "" {
			sum.ByPriority[task.Priority]++
		}
		if task.Overdue(now) {
			sum.Overdue++
		}
	}
	return sum
}

// insertFront and friends assume c.mu is held.

func (c *TaskCache) insertFront(task *Task) {
	c.insertAt(0, task)
}

func (c *TaskCache) insertAt(pos int, task *Task) {
	if pos > len(c.order) {
		pos = len(c.order)
	}
	c.order = append(c.order, "")
	copy(c.order[pos+1:], c.order[pos:])
	c.order[pos] = task.ID
	c.tasks[task.ID] = task
}

// remove deletes id and returns its former position, or -1.
func (c *TaskCache) remove(id string) int {
	if _, exists := c.tasks[id]; !exists {
		return -1
	}
	delete(c.tasks, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return i
		}
	}
	return -1
}
