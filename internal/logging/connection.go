package logging

import (
	"context"
	"sync"
	"time"

	"chronicle/internal/logstore"
	"chronicle/internal/reqctx"
)

// ConnState is the connection manager's lifecycle.
type ConnState int

const (
	ConnIdle ConnState = iota
	ConnConnecting
	ConnConnected
	ConnFailed
)

// String returns the state name used in status output.
func (s ConnState) String() string {
	switch s {
	case ConnIdle:
		return "idle"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// maxConnectAttempts bounds the connection loop. After exhaustion the store
// sink stays degraded for the rest of the process unless Retry is invoked.
const maxConnectAttempts = 3

// ConnectionManager establishes the persistent-store connection in the
// background so logger construction never blocks on it. At most one
// connection attempt sequence is in flight per logger instance; concurrent
// initializers observe and await that single attempt.
type ConnectionManager struct {
	path    string
	timeout time.Duration
	service string
	console *ConsoleSink
	sink    *StoreSink

	mu    sync.Mutex
	state ConnState
	done  chan struct{}
	store *logstore.Store
}

func newConnectionManager(path string, timeout time.Duration, service string, console *ConsoleSink, sink *StoreSink) *ConnectionManager {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ConnectionManager{
		path:    path,
		timeout: timeout,
		service: service,
		console: console,
		sink:    sink,
	}
}

// State reports the manager's current lifecycle state.
func (m *ConnectionManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the bounded connection loop unless one already ran or is
// running. With no store path configured the manager stays idle forever and
// the sink remains degraded; that is configuration, not an error.
func (m *ConnectionManager) Start() {
	if m.path == "" {
		return
	}

	m.mu.Lock()
	if m.state != ConnIdle {
		m.mu.Unlock()
		return
	}
	m.state = ConnConnecting
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.sink.setState(StateInitializing)
	go m.connect(done)
}

// Retry re-runs the connection loop after a terminal failure. It is a no-op
// in every other state; the manager never loops on its own.
func (m *ConnectionManager) Retry() {
	m.mu.Lock()
	if m.state != ConnFailed {
		m.mu.Unlock()
		return
	}
	m.state = ConnConnecting
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.sink.setState(StateInitializing)
	go m.connect(done)
}

// Wait blocks until the in-flight attempt sequence (if any) finishes or ctx
// ends. Callers that need to know the outcome check State afterwards.
func (m *ConnectionManager) Wait(ctx context.Context) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Close waits for any in-flight attempt and releases the store connection.
// Safe to call multiple times.
func (m *ConnectionManager) Close() error {
	m.Wait(context.Background())

	m.mu.Lock()
	store := m.store
	m.store = nil
	if m.state == ConnConnected {
		m.state = ConnIdle
	}
	m.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Close()
}

func (m *ConnectionManager) connect(done chan struct{}) {
	defer close(done)

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		store, err := logstore.Open(ctx, m.path)
		cancel()

		if err == nil {
			m.mu.Lock()
			m.state = ConnConnected
			m.store = store
			m.mu.Unlock()

			m.sink.Activate(store)
			m.console.Write(Record{
				Time:      time.Now().UTC(),
				Level:     LevelInfo,
				Message:   "persistent log store ready",
				Service:   m.service,
				RequestID: reqctx.NoRequestID,
				Extra:     map[string]any{"attempt": attempt, "path": m.path},
			})
			return
		}

		m.console.reportFailure(m.service, "log store connection attempt failed", err)
	}

	m.mu.Lock()
	m.state = ConnFailed
	m.mu.Unlock()
	m.sink.setState(StateDegraded)
	m.console.reportFailure(m.service, "log store unavailable after retries, continuing console/file only", nil)
}
