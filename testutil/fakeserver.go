package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// FakeBackend simulates the task API for gateway and live channel
// tests: REST task CRUD, auth, the presigned upload endpoints, and a
// websocket push endpoint.
type FakeBackend struct {
	Server *httptest.Server

	// Token, when set, is the only accepted bearer credential on the
	// task routes; requests without it get a 401.
	Token string

	// FailCanonicalDelete makes DELETE /tasks/{id} answer 404 so the
	// legacy fallback chain is exercised.
	FailCanonicalDelete bool

	mu       sync.Mutex
	refuseWS bool
	tasks    map[string]map[string]interface{}
	order    []string
	users    []map[string]interface{}
	blobs    map[string][]byte
	requests []string
	nextID   int
	upgrader websocket.Upgrader
	conns    []*websocket.Conn
}

// NewFakeBackend starts a fake backend. The server is torn down with
// the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		tasks:  make(map[string]map[string]interface{}),
		blobs:  make(map[string][]byte),
		nextID: 1,
	}
	fb.Server = httptest.NewServer(fb.router())
	t.Cleanup(fb.Close)
	return fb
}

// Close shuts the server down and drops any push connections.
func (fb *FakeBackend) Close() {
	fb.mu.Lock()
	for _, conn := range fb.conns {
		_ = conn.Close()
	}
	fb.conns = nil
	fb.mu.Unlock()
	fb.Server.Close()
}

// URL returns the REST base URL.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// SocketURL returns the push endpoint URL.
func (fb *FakeBackend) SocketURL() string {
	return "ws" + strings.TrimPrefix(fb.Server.URL, "http") + "/ws"
}

// SeedTask stores a raw task object as the backend would return it.
func (fb *FakeBackend) SeedTask(raw map[string]interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	id, _ := raw["_id"].(string)
	if id == "" {
		id, _ = raw["id"].(string)
	}
	if _, exists := fb.tasks[id]; !exists {
		fb.order = append(fb.order, id)
	}
	fb.tasks[id] = raw
}

// SeedUsers sets the user directory payload.
func (fb *FakeBackend) SeedUsers(users []map[string]interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.users = users
}

// Requests returns the recorded "METHOD path" log in arrival order.
func (fb *FakeBackend) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// ListCalls counts GET /tasks requests, for polling assertions.
func (fb *FakeBackend) ListCalls() int {
	count := 0
	for _, r := range fb.Requests() {
		if r == "GET /tasks" {
			count++
		}
	}
	return count
}

// Push broadcasts an event to every connected websocket client.
func (fb *FakeBackend) Push(t *testing.T, event string, payload interface{}) {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	msg := map[string]interface{}{"event": event, "payload": payload}
	for _, conn := range fb.conns {
		if err := conn.WriteJSON(msg); err != nil {
			t.Logf("push to client failed: %v", err)
		}
	}
}

// PushClients reports the number of connected websocket clients.
func (fb *FakeBackend) PushClients() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.conns)
}

func (fb *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(fb.record)

	r.Post("/login", fb.handleAuth)
	r.Post("/register", fb.handleAuth)

	r.Group(func(r chi.Router) {
		r.Use(fb.requireAuth)
		r.Get("/tasks", fb.handleList)
		r.Post("/tasks", fb.handleCreate)
		r.Patch("/tasks/{id}", fb.handlePatch)
		r.Delete("/tasks/{id}", fb.handleDeleteCanonical)
		r.Delete("/task/{id}", fb.handleDeleteLegacy)
		r.Delete("/tasks", fb.handleDeleteQueryOrBody)
		r.Delete("/task", fb.handleDeleteQueryOrBody)
		r.Get("/users", fb.handleUsers)
		r.Get("/upload/sign", fb.handleSign)
		r.Get("/upload/sign-get", fb.handleSignGet)
	})

	r.Put("/blob/{key}", fb.handleBlobPut)
	r.Get("/ws", fb.handleWS)
	return r
}

func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requests = append(fb.requests, r.Method+" "+r.URL.Path)
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fb.Token != "" && r.Header.Get("Authorization") != "Bearer "+fb.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) handleAuth(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds["password"] == "wrong" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	name := creds["name"]
	if name == "" {
		name = "Test User"
	}
	token := fb.Token
	if token == "" {
		token = "fake-token"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  map[string]interface{}{"_id": "u1", "name": name, "email": creds["email"]},
	})
}

func (fb *FakeBackend) handleList(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	out := make([]map[string]interface{}, 0, len(fb.order))
	for _, id := range fb.order {
		out = append(out, fb.tasks[id])
	}
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (fb *FakeBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}
	if title, _ := raw["title"].(string); title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	fb.mu.Lock()
	id := fmt.Sprintf("t%d", fb.nextID)
	fb.nextID++
	raw["_id"] = id
	raw["status"] = "pending"
	fb.tasks[id] = raw
	fb.order = append(fb.order, id)
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, raw)
}

func (fb *FakeBackend) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}
	fb.mu.Lock()
	task, ok := fb.tasks[id]
	if !ok {
		fb.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	for k, v := range patch {
		task[k] = v
	}
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, task)
}

func (fb *FakeBackend) handleDeleteCanonical(w http.ResponseWriter, r *http.Request) {
	if fb.FailCanonicalDelete {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not here"})
		return
	}
	fb.deleteByID(w, chi.URLParam(r, "id"))
}

func (fb *FakeBackend) handleDeleteLegacy(w http.ResponseWriter, r *http.Request) {
	fb.deleteByID(w, chi.URLParam(r, "id"))
}

func (fb *FakeBackend) handleDeleteQueryOrBody(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		id = body["id"]
	}
	fb.deleteByID(w, id)
}

func (fb *FakeBackend) deleteByID(w http.ResponseWriter, id string) {
	fb.mu.Lock()
	_, ok := fb.tasks[id]
	if ok {
		delete(fb.tasks, id)
		for i, existing := range fb.order {
			if existing == id {
				fb.order = append(fb.order[:i], fb.order[i+1:]...)
				break
			}
		}
	}
	fb.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (fb *FakeBackend) handleUsers(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	users := fb.users
	fb.mu.Unlock()
	if users == nil {
		users = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (fb *FakeBackend) handleSign(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename required"})
		return
	}
	key := "uploads/" + filename
	writeJSON(w, http.StatusOK, map[string]string{
		"uploadUrl":  fb.Server.URL + "/blob/" + filename,
		"objectName": key,
	})
}

func (fb *FakeBackend) handleSignGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("objectName")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "objectName required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": fb.Server.URL + "/blob/" + strings.TrimPrefix(key, "uploads/") + "?sig=fake",
	})
}

func (fb *FakeBackend) handleBlobPut(w http.ResponseWriter, r *http.Request) {
	// a presigned target rejects extra credentials, like real object
	// storage does
	if r.Header.Get("Authorization") != "" {
		http.Error(w, "unexpected authorization header", http.StatusBadRequest)
		return
	}
	key := chi.URLParam(r, "key")
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	fb.mu.Lock()
	fb.blobs[key] = data
	fb.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

// Blob returns the uploaded bytes for key, if any.
func (fb *FakeBackend) Blob(key string) []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.blobs[key]
}

// SetRefuseWebsocket toggles upgrade rejection on the push endpoint,
// forcing (or releasing) the polling fallback.
func (fb *FakeBackend) SetRefuseWebsocket(refuse bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.refuseWS = refuse
}

func (fb *FakeBackend) handleWS(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	refuse := fb.refuseWS
	fb.mu.Unlock()
	if refuse {
		http.Error(w, "no websocket here", http.StatusNotFound)
		return
	}
	conn, err := fb.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	// first client message is the auth payload
	var auth map[string]string
	if err := conn.ReadJSON(&auth); err != nil {
		conn.Close()
		return
	}
	if fb.Token != "" && auth["token"] != fb.Token {
		conn.Close()
		return
	}
	fb.mu.Lock()
	fb.conns = append(fb.conns, conn)
	fb.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
