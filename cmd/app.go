package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
)

// app wires the core components for one command invocation. The cache
// and session store are owned here and passed down explicitly; nothing
// hangs off package globals.
type app struct {
	cfg      *internal.Config
	db       *sql.DB
	sessions *internal.SessionStore
	gateway  *internal.Gateway
	cache    *internal.TaskCache
}

// newApp loads config and opens the local database.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	db, err := internal.OpenDatabase(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sessions := internal.NewSessionStore(db)
	return &app{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		gateway:  internal.NewGateway(cfg.API.BaseURL, sessions),
		cache:    internal.NewTaskCache(),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		internal.LogWarn("Failed to close local store: %v", err)
	}
}

// requireSession loads the current session or fails with a hint.
func (a *app) requireSession() (*internal.Session, error) {
	sess, err := a.sessions.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run `taskdeck login` first)")
	}
	return sess, nil
}

// socketURL resolves the push endpoint, deriving it from the API base
// unless overridden in config.
func (a *app) socketURL() string {
	if a.cfg.API.SocketURL != "" {
		return a.cfg.API.SocketURL
	}
	return internal.DeriveSocketURL(a.cfg.API.BaseURL)
}

// refresh pulls the task list into the cache, falling back to the
// offline snapshot when the backend is unreachable.
func (a *app) refresh(ctx context.Context) error {
	tasks, err := a.gateway.ListTasks(ctx)
	if err != nil {
		if internal.IsUnreachable(err) {
			internal.LogWarn("Backend unreachable, using offline snapshot")
			return a.cache.LoadSnapshot(a.db)
		}
		return err
	}
	a.cache.ReconcileFull(tasks)
	if err := a.cache.SaveSnapshot(a.db); err != nil {
		internal.LogWarn("Failed to persist snapshot: %v", err)
	}
	return nil
}
