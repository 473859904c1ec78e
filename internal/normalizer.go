package internal

import (
	"encoding/json"
	"time"
)

// Normalizer converts raw server payloads into canonical entities. The
// backend's response shape has drifted over time (some endpoints return
// `id`, others `_id`; assignees arrive as bare strings or objects), so
// every payload crosses this boundary exactly once and downstream code
// only ever sees the canonical shape.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// RawObject is a decoded but not yet normalized server payload.
type RawObject map[string]interface{}

// NormalizeTask converts a raw server object into a canonical Task.
// Fails only when no id can be resolved; every other field degrades to
// its zero value rather than erroring.
func (n *Normalizer) NormalizeTask(raw RawObject) (*Task, error) {
	if raw == nil {
		return nil, &MalformedEntityError{Entity: "task", Reason: "payload is nil"}
	}
	id := resolveID(raw)
	if id == "" {
		return nil, &MalformedEntityError{Entity: "task", Reason: "no id field"}
	}

	task := &Task{
		ID:          id,
		Title:       firstString(raw, "title"),
		Description: firstString(raw, "description"),
		OwnerID:     n.resolveOwner(raw),
		Assignees:   n.normalizeAssignees(raw["assignees"]),
		DueDate:     parseInstant(raw["dueDate"]),
		CreatedAt:   parseInstant(raw["createdAt"]),
		UpdatedAt:   parseInstant(raw["updatedAt"]),
	}

	if p := Priority(firstString(raw, "priority")); p.Valid() {
		task.Priority = p
	}
	if s := Status(firstString(raw, "status")); s.Valid() {
		task.Status = s
	}

	if list, ok := raw["attachments"].([]interface{}); ok {
		for _, item := range list {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			att := n.NormalizeAttachment(obj)
			if att.DisplayName == "" && att.ObjectKey == "" && att.DownloadURL == "" {
				continue
			}
			task.Attachments = append(task.Attachments, att)
		}
	}

	return task, nil
}

// DecodeTask unmarshals JSON and normalizes it in one step.
func (n *Normalizer) DecodeTask(data []byte) (*Task, error) {
	var raw RawObject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedEntityError{Entity: "task", Reason: err.Error()}
	}
	return n.NormalizeTask(raw)
}

// NormalizeTaskList normalizes a list payload, dropping entries that
// fail to normalize. A partially bad batch is still a usable batch.
func (n *Normalizer) NormalizeTaskList(raw []RawObject) []*Task {
	tasks := make([]*Task, 0, len(raw))
	for _, obj := range raw {
		task, err := n.NormalizeTask(obj)
		if err != nil {
			LogWarn("Dropping malformed task from batch: %v", err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// NormalizeUser converts a raw server object into a canonical User.
func (n *Normalizer) NormalizeUser(raw RawObject) (*User, error) {
	if raw == nil {
		return nil, &MalformedEntityError{Entity: "user", Reason: "payload is nil"}
	}
	id := resolveID(raw)
	if id == "" {
		return nil, &MalformedEntityError{Entity: "user", Reason: "no id field"}
	}
	return &User{
		ID:    id,
		Name:  firstString(raw, "name", "displayName", "username"),
		Email: firstString(raw, "email"),
	}, nil
}

// NormalizeUserList normalizes a user list, dropping malformed entries.
func (n *Normalizer) NormalizeUserList(raw []RawObject) []*User {
	users := make([]*User, 0, len(raw))
	for _, obj := range raw {
		user, err := n.NormalizeUser(obj)
		if err != nil {
			LogWarn("Dropping malformed user from batch: %v", err)
			continue
		}
		users = append(users, user)
	}
	return users
}

// NormalizeAttachment maps the historical attachment field aliases onto
// the canonical shape. First non-empty alias wins per field.
func (n *Normalizer) NormalizeAttachment(raw RawObject) Attachment {
	att := Attachment{
		DisplayName: firstString(raw, "name", "filename", "originalname"),
		ObjectKey:   firstString(raw, "objectName", "key", "object_key"),
		DownloadURL: firstString(raw, "url", "getUrl", "signedUrl"),
		ContentType: firstString(raw, "contentType", "mimetype", "content_type"),
	}
	switch v := raw["size"].(type) {
	case float64:
		att.SizeBytes = int64(v)
	case string:
		// some endpoints return size as a string; ignore if unparsable
	}
	if att.SizeBytes == 0 {
		if v, ok := raw["sizeBytes"].(float64); ok {
			att.SizeBytes = int64(v)
		}
	}
	if att.DisplayName == "" {
		att.DisplayName = att.ObjectKey
	}
	return att
}

// normalizeAssignees accepts bare id strings or {_id|id, name} objects.
// Entries resolving to nothing, "undefined" or "null" are silently
// dropped; duplicates keep their first occurrence. Relative order of
// survivors is preserved.
func (n *Normalizer) normalizeAssignees(raw interface{}) []Assignee {
	list, ok := raw.([]interface{})
	if !ok {
		return []Assignee{}
	}
	seen := make(map[string]bool, len(list))
	assignees := make([]Assignee, 0, len(list))
	for _, item := range list {
		var a Assignee
		switch v := item.(type) {
		case string:
			a.ID = v
		case map[string]interface{}:
			a.ID = resolveID(v)
			a.Name = firstString(v, "name", "displayName")
		}
		if !validAssigneeID(a.ID) {
			LogDebug("Dropping invalid assignee entry: %v", item)
			continue
		}
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		assignees = append(assignees, a)
	}
	return assignees
}

// resolveOwner picks the task owner from the id fields the backend has
// used over time: a plain userId, or a nested user object.
func (n *Normalizer) resolveOwner(raw RawObject) string {
	if id := firstString(raw, "userId", "ownerId"); validAssigneeID(id) {
		return id
	}
	if user, ok := raw["user"].(map[string]interface{}); ok {
		if id := resolveID(user); validAssigneeID(id) {
			return id
		}
	}
	return ""
}

// FilterAssigneeIDs drops empty, "undefined" and "null" ids from a bare
// id list, preserving order. Used before transmitting assignee updates.
func FilterAssigneeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validAssigneeID(id) {
			out = append(out, id)
		}
	}
	return out
}

func validAssigneeID(id string) bool {
	return id != "" && id != "undefined" && id != "null"
}

// resolveID resolves the canonical id: `_id` wins over `id`.
func resolveID(raw RawObject) string {
	if id := firstString(raw, "_id"); id != "" {
		return id
	}
	return firstString(raw, "id")
}

// firstString returns the first key in keys that holds a non-empty
// string value.
func firstString(raw RawObject, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// instantLayouts are the date formats the backend has been seen to
// emit, tried in order.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseInstant parses a server timestamp. Invalid or absent values
// normalize to the zero time, never an error.
func parseInstant(raw interface{}) time.Time {
	s, ok := raw.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
