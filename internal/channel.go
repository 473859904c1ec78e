package internal

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ChannelState is the live update channel's connection state.
type ChannelState int

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// taskLister is the slice of the gateway the channel needs for full
// reconciliation and polling.
type taskLister interface {
	ListTasks(ctx context.Context) ([]*Task, error)
}

// LiveChannel is the push-based update mechanism with a polling
// fallback. It owns exactly one of {socket connected, polling active}
// at any time: while the socket is up no poll fires, and while it is
// down the task list is refetched on a fixed period. Reconnection is
// automatic and unbounded with a capped backoff; the channel is meant
// to outlive transient network loss for the life of the session.
type LiveChannel struct {
	url          string
	sessions     *SessionStore
	lister       taskLister
	cache        *TaskCache
	normalizer   *Normalizer
	dialer       *websocket.Dialer
	pollInterval time.Duration

	// reconnect pacing, overridable in tests
	initialDelay time.Duration
	maxDelay     time.Duration

	mu      sync.Mutex
	state   ChannelState
	onState func(ChannelState)
}

// NewLiveChannel creates a channel against socketURL. pollInterval is
// the fallback refetch period; zero selects the 10s default.
func NewLiveChannel(socketURL string, sessions *SessionStore, lister taskLister, cache *TaskCache, pollInterval time.Duration) *LiveChannel {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &LiveChannel{
		url:          socketURL,
		sessions:     sessions,
		lister:       lister,
		cache:        cache,
		normalizer:   NewNormalizer(),
		dialer:       websocket.DefaultDialer,
		pollInterval: pollInterval,
		initialDelay: initialReconnectDelay,
		maxDelay:     maxReconnectDelay,
		state:        StateDisconnected,
	}
}

// DeriveSocketURL maps the REST base URL onto the push endpoint the
// backend serves next to it.
func DeriveSocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	u = strings.TrimSuffix(u, "/api")
	if strings.HasPrefix(u, "https://") {
		u = "wss://" + strings.TrimPrefix(u, "https://")
	} else if strings.HasPrefix(u, "http://") {
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// State returns the current connection state.
func (l *LiveChannel) State() ChannelState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// OnStateChange registers a hook invoked on every state transition.
// Must be set before Run.
func (l *LiveChannel) OnStateChange(fn func(ChannelState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onState = fn
}

func (l *LiveChannel) setState(s ChannelState) {
	l.mu.Lock()
	prev := l.state
	l.state = s
	fn := l.onState
	l.mu.Unlock()
	if prev != s {
		LogDebug("Live channel: %s -> %s", prev, s)
		if fn != nil {
			fn(s)
		}
	}
}

// Run drives the channel until ctx is canceled. It blocks; callers run
// it in a goroutine and cancel ctx to tear down. After Run returns no
// further event touches the cache.
func (l *LiveChannel) Run(ctx context.Context) {
	defer l.setState(StateClosed)

	var stopPolling func()
	defer func() {
		if stopPolling != nil {
			stopPolling()
		}
	}()

	delay := l.initialDelay
	for {
		if ctx.Err() != nil {
			return
		}
		l.setState(StateConnecting)
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			LogWarn("Live channel connect failed: %v", err)
			l.setState(StateReconnecting)
			if stopPolling == nil {
				stopPolling = l.startPolling(ctx)
			}
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = l.nextDelay(delay)
			continue
		}

		if stopPolling != nil {
			stopPolling()
			stopPolling = nil
		}
		delay = l.initialDelay
		l.setState(StateConnected)
		// repair anything missed while offline, and confirm the
		// baseline the incoming events will be applied against
		l.resync(ctx)

		l.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
		LogInfo("Live channel disconnected, reconnecting")
		l.setState(StateReconnecting)
	}
}

// dial opens the socket and authenticates with the current session
// token. Connecting without a session sends an empty token; the server
// decides rejection, mirroring the REST path.
func (l *LiveChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := l.dialer.DialContext(dialCtx, l.url, nil)
	if err != nil {
		return nil, err
	}

	token := ""
	if sess, err := l.sessions.Load(); err == nil && sess != nil {
		token = sess.Token
	}
	if err := conn.WriteJSON(map[string]string{"token": token}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// startPolling activates the fallback: ListTasks reconciliations on the
// fixed poll period until the returned stop function is called. The
// first refetch lands one interval after activation, so a socket that
// comes straight back never races a redundant poll.
func (l *LiveChannel) startPolling(ctx context.Context) func() {
	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(l.pollInterval)
		defer ticker.Stop()
		LogInfo("Live channel unavailable, polling every %s", l.pollInterval)
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				l.resync(pollCtx)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// sleepCtx waits for d, returning false when ctx was canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// resync pulls a fresh full task list into the cache. Failures are
// logged and skipped; the next poll or event will try again.
func (l *LiveChannel) resync(ctx context.Context) {
	tasks, err := l.lister.ListTasks(ctx)
	if err != nil {
		LogWarn("Live channel resync failed: %v", err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	l.cache.ReconcileFull(tasks)
}

// wireEvent is the envelope the push endpoint emits.
type wireEvent struct {
	Event   string          `json:"event"`
	Type    string          `json:"type"` // older payloads use "type"
	Payload json.RawMessage `json:"payload"`
}

func (e *wireEvent) name() string {
	if e.Event != "" {
		return e.Event
	}
	return e.Type
}

// readLoop consumes events until the connection drops or ctx is
// canceled. A malformed event is logged and skipped; it never stops
// subsequent events from being processed.
func (l *LiveChannel) readLoop(ctx context.Context, conn *websocket.Conn) {
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-closed:
		}
	}()

	for {
		var event wireEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				LogDebug("Live channel read failed: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		l.apply(event)
	}
}

func (l *LiveChannel) apply(event wireEvent) {
	switch event.name() {
	case "task-created", "task-updated":
		task, err := l.normalizer.DecodeTask(event.Payload)
		if err != nil {
			LogWarn("Skipping malformed %s event: %v", event.name(), err)
			return
		}
		l.cache.ApplyUpdate(task)
	case "task-deleted":
		id := decodeDeletedID(event.Payload)
		if id == "" {
			LogWarn("Skipping task-deleted event without id")
			return
		}
		l.cache.ApplyDelete(id)
	default:
		LogDebug("Ignoring unknown live event %q", event.name())
	}
}

// decodeDeletedID accepts either a bare id string or an object carrying
// an id field.
func decodeDeletedID(payload []byte) string {
	var id string
	if err := json.Unmarshal(payload, &id); err == nil {
		return id
	}
	var raw RawObject
	if err := json.Unmarshal(payload, &raw); err == nil {
		return resolveID(raw)
	}
	return ""
}

func (l *LiveChannel) nextDelay(d time.Duration) time.Duration {
	d *= 2
	if d > l.maxDelay {
		return l.maxDelay
	}
	return d
}
