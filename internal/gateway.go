package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway wraps the task backend's REST endpoints. Every call consults
// the session store for the bearer credential; calls without a session
// go out unauthenticated and the server decides rejection.
type Gateway struct {
	baseURL    string
	client     *http.Client
	sessions   *SessionStore
	normalizer *Normalizer
}

// NewGateway creates a gateway against baseURL (e.g.
// "https://api.example.com/api", no trailing slash required).
func NewGateway(baseURL string, sessions *SessionStore) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{},
		sessions:   sessions,
		normalizer: NewNormalizer(),
	}
}

// BaseURL returns the configured API base.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// ListTasks fetches and normalizes the full task list. Malformed
// entries are dropped, not fatal.
func (g *Gateway) ListTasks(ctx context.Context) ([]*Task, error) {
	body, err := g.do(ctx, http.MethodGet, g.baseURL+"/tasks", nil)
	if err != nil {
		return nil, err
	}
	var raw []RawObject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedEntityError{Entity: "task", Reason: fmt.Sprintf("list payload: %v", err)}
	}
	return g.normalizer.NormalizeTaskList(raw), nil
}

// ListUsers fetches the user directory.
func (g *Gateway) ListUsers(ctx context.Context) ([]*User, error) {
	body, err := g.do(ctx, http.MethodGet, g.baseURL+"/users", nil)
	if err != nil {
		return nil, err
	}
	var raw []RawObject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedEntityError{Entity: "user", Reason: fmt.Sprintf("list payload: %v", err)}
	}
	return g.normalizer.NormalizeUserList(raw), nil
}

// CreateTask validates the draft, posts it and returns the normalized
// server entity. When the caller supplies no assignees the current
// user is assigned, so no task ends up unassigned.
func (g *Gateway) CreateTask(ctx context.Context, draft TaskDraft) (*Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !draft.Priority.Valid() {
		return nil, &ValidationError{Field: "priority", Reason: "must be urgent, medium or low"}
	}

	sess, err := g.sessions.Load()
	if err != nil {
		return nil, err
	}
	assignees := FilterAssigneeIDs(draft.Assignees)
	if len(assignees) == 0 {
		if sess == nil {
			return nil, &ValidationError{Field: "assignees", Reason: "at least one assignee required"}
		}
		assignees = []string{sess.UserID}
	}

	payload := map[string]interface{}{
		"title":       title,
		"description": strings.TrimSpace(draft.Description),
		"priority":    draft.Priority,
		"assignees":   assignees,
	}
	if !draft.DueDate.IsZero() {
		payload["dueDate"] = draft.DueDate.UTC().Format(time.RFC3339)
	}
	if sess != nil {
		payload["userId"] = sess.UserID
	}
	if len(draft.Attachments) > 0 {
		payload["attachments"] = attachmentPayload(draft.Attachments)
	}

	body, err := g.do(ctx, http.MethodPost, g.baseURL+"/tasks", payload)
	if err != nil {
		return nil, err
	}
	return g.normalizer.DecodeTask(body)
}

// UpdateTask patches only the supplied fields. An included assignee
// list is filtered for malformed entries before transmission.
func (g *Gateway) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	if patch.IsZero() {
		return nil, &ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	payload := map[string]interface{}{}
	if patch.Title != nil {
		payload["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		payload["description"] = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, &ValidationError{Field: "priority", Reason: "must be urgent, medium or low"}
		}
		payload["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, &ValidationError{Field: "status", Reason: "must be pending, in-progress or completed"}
		}
		payload["status"] = *patch.Status
	}
	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			payload["dueDate"] = nil
		} else {
			payload["dueDate"] = patch.DueDate.UTC().Format(time.RFC3339)
		}
	}
	if patch.Assignees != nil {
		payload["assignees"] = FilterAssigneeIDs(patch.Assignees)
	}
	if patch.Attachments != nil {
		payload["attachments"] = attachmentPayload(patch.Attachments)
	}

	body, err := g.do(ctx, http.MethodPatch, g.baseURL+"/tasks/"+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	return g.normalizer.DecodeTask(body)
}

// deleteAttempt is one candidate shape for the delete endpoint.
type deleteAttempt struct {
	url  string
	body interface{}
}

// deleteAttempts lists the endpoint shapes the backend has answered to
// over its lifetime, canonical first. This is a compatibility shim for
// legacy endpoint aliasing, kept deliberately explicit.
func (g *Gateway) deleteAttempts(id string) []deleteAttempt {
	escaped := url.PathEscape(id)
	legacyBase := g.baseURL + "/task"
	return []deleteAttempt{
		{url: g.baseURL + "/tasks/" + escaped},
		{url: legacyBase + "/" + escaped},
		{url: g.baseURL + "/tasks?id=" + url.QueryEscape(id)},
		{url: legacyBase + "?id=" + url.QueryEscape(id)},
		{url: g.baseURL + "/tasks", body: map[string]string{"id": id}},
	}
}

// DeleteTask removes a task. The canonical endpoint is tried first;
// on failure the legacy shapes are attempted in order, stopping at the
// first success. The last failure's classification propagates.
func (g *Gateway) DeleteTask(ctx context.Context, id string) error {
	var lastErr error
	for i, attempt := range g.deleteAttempts(id) {
		_, err := g.do(ctx, http.MethodDelete, attempt.url, attempt.body)
		if err == nil {
			if i > 0 {
				LogDebug("Delete succeeded via fallback endpoint %s", attempt.url)
			}
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		LogWarn("Delete attempt failed: DELETE %s: %v", attempt.url, err)
		lastErr = err
	}
	return lastErr
}

// do issues one request and returns the response body, classifying any
// failure per the error taxonomy. A 401 tears down the session so the
// UI can route back to login.
func (g *Gateway) do(ctx context.Context, method, rawURL string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	hadSession := false
	if sess, err := g.sessions.Load(); err != nil {
		LogWarn("Failed to load session for auth header: %v", err)
	} else if sess != nil {
		hadSession = true
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindUnreachable, Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := classifyStatus(resp.StatusCode, serverMessage(body))
		// only an existing session gets torn down; a 401 on a login
		// attempt has no session to invalidate
		if apiErr.Kind == KindUnauthenticated && hadSession {
			if clearErr := g.sessions.Clear(); clearErr != nil {
				LogWarn("Failed to clear rejected session: %v", clearErr)
			} else {
				LogInfo("Session invalidated by server, please log in again")
			}
		}
		return nil, apiErr
	}
	return body, nil
}

// serverMessage extracts the {error|message} field from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// attachmentPayload serializes attachments in the shape the backend
// stores: durable fields only, presigned URLs never round-trip.
func attachmentPayload(atts []Attachment) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(atts))
	for _, att := range atts {
		entry := map[string]interface{}{"name": att.DisplayName}
		if att.ObjectKey != "" {
			entry["objectName"] = att.ObjectKey
		}
		if att.SizeBytes > 0 {
			entry["size"] = att.SizeBytes
		}
		if att.ContentType != "" {
			entry["contentType"] = att.ContentType
		}
		out = append(out, entry)
	}
	return out
}
