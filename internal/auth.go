package internal

import (
	"context"
	"encoding/json"
	"net/http"
)

// Login authenticates against POST /login and persists the session.
// The backend may answer {token, user} or {token, ...userFields}; both
// shapes are accepted.
func (g *Gateway) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Field: "credentials", Reason: "email and password are required"}
	}
	return g.authenticate(ctx, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account against POST /register and persists the
// resulting session.
func (g *Gateway) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, &ValidationError{Field: "credentials", Reason: "name, email and password are required"}
	}
	return g.authenticate(ctx, "/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (g *Gateway) authenticate(ctx context.Context, path string, payload map[string]string) (*Session, error) {
	body, err := g.do(ctx, http.MethodPost, g.baseURL+path, payload)
	if err != nil {
		return nil, err
	}

	var raw RawObject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedEntityError{Entity: "user", Reason: "auth response is not an object"}
	}
	token, _ := raw["token"].(string)
	if token == "" {
		return nil, &MalformedEntityError{Entity: "user", Reason: "auth response has no token"}
	}

	// user fields either nested under "user" or flat on the response
	userRaw := raw
	if nested, ok := raw["user"].(map[string]interface{}); ok {
		userRaw = nested
	}
	user, err := g.normalizer.NormalizeUser(userRaw)
	if err != nil {
		return nil, err
	}

	sess := &Session{Token: token, UserID: user.ID, DisplayName: user.Name}
	if err := g.sessions.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout destroys the local session. The backend keeps no server-side
// session state for this client.
func (g *Gateway) Logout() error {
	return g.sessions.Clear()
}
