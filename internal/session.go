package internal

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStore owns the durable credential. It is the single source of
// truth consulted before every gateway call; at most one session row
// exists at a time.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session store backed by the local database.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Load returns the current session, or nil when no session exists.
func (s *SessionStore) Load() (*Session, error) {
	row := s.db.QueryRow("SELECT token, user_id, COALESCE(display_name, '') FROM session WHERE id = 1")
	var sess Session
	if err := row.Scan(&sess.Token, &sess.UserID, &sess.DisplayName); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, &StorageError{Op: "read", Err: err}
	}
	return &sess, nil
}

// Save persists the session, replacing any existing one.
func (s *SessionStore) Save(sess *Session) error {
	_, err := s.db.Exec(
		`INSERT INTO session (id, token, user_id, display_name, saved_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			display_name = excluded.display_name,
			saved_at = excluded.saved_at`,
		sess.Token, sess.UserID, sess.DisplayName, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// Clear destroys the current session. Clearing an absent session is a
// no-op.
func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// TokenClaims is the subset of JWT claims the client surfaces. The
// client holds no signing key, so the token is decoded without
// verification; the server remains the authority on validity.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past.
// Tokens without an expiry claim never report expired.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}

// ParseTokenClaims decodes the registered claims from a bearer token.
// Parse failure is non-fatal upstream: the token is still sent as-is.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	parser := jwt.NewParser()
	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	out := &TokenClaims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
