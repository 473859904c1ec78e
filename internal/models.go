package internal

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Statuses lists the workflow states in board-column order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// Assignee is a user a task is assigned to, with the display name
// resolved at normalization time when the server provided one.
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Attachment is a file attached to a task. ObjectKey is the durable
// reference; DownloadURL is a short-lived presigned link and is stale
// as soon as the task is refetched.
type Attachment struct {
	DisplayName string `json:"display_name"`
	ObjectKey   string `json:"object_key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Task is the canonical in-memory task entity. ID is the only stable
// identity; everything else is mutable.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
	DueDate     time.Time    `json:"due_date,omitempty"`
	Status      Status       `json:"status,omitempty"`
	Assignees   []Assignee   `json:"assignees"`
	OwnerID     string       `json:"owner_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty"`

	// Provisional marks an optimistic local entry that has not been
	// confirmed by the server yet.
	Provisional bool `json:"provisional,omitempty"`
}

// AssignedTo reports whether userID appears in the task's assignees.
func (t *Task) AssignedTo(userID string) bool {
	for _, a := range t.Assignees {
		if a.ID == userID {
			return true
		}
	}
	return false
}

// Overdue reports whether the task has a due date in the past and is
// not completed.
func (t *Task) Overdue(now time.Time) bool {
	if t.DueDate.IsZero() || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// User is a directory entry used to resolve assignee and owner names.
// It is never mutated by this core.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the locally persisted authenticated identity. At most one
// session exists at a time.
type Session struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// TaskDraft carries the caller-supplied fields for creating a task.
type TaskDraft struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     time.Time
	Assignees   []string
	Attachments []Attachment
}

// TaskPatch carries a partial update. Nil pointer fields are left
// untouched on the server; a non-nil Assignees slice replaces the
// assignee list wholesale.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
	Status      *Status
	Assignees   []string
	Attachments []Attachment
}

// IsZero reports whether the patch carries no fields at all.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Status == nil && p.Assignees == nil && p.Attachments == nil
}
