package logging

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"chronicle/internal/logstore"
)

// SinkState is the lifecycle of the persistent-store sink. Console and file
// sinks are always active and carry no state.
type SinkState int32

const (
	StateUninitialized SinkState = iota
	StateInitializing
	StateActive
	StateDegraded
)

// String returns the state name used in status output and log lines.
func (s SinkState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

const (
	storeQueueDepth   = 1024
	storeWriteTimeout = 5 * time.Second
)

// StoreSink persists records to the log store once the connection manager
// activates it. Writes are fire-and-forget: records go through a bounded
// queue drained by one worker goroutine, and anything that cannot be
// accepted (inactive sink, full queue) is dropped rather than buffered or
// replayed. Persistence failures are reported via the console sink only.
type StoreSink struct {
	console *ConsoleSink
	service string

	state atomic.Int32
	store *logstore.Store

	queue     chan Record
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewStoreSink creates an uninitialized sink. It drops every write until
// Activate is called.
func NewStoreSink(service string, console *ConsoleSink) *StoreSink {
	return &StoreSink{
		console: console,
		service: service,
		queue:   make(chan Record, storeQueueDepth),
		done:    make(chan struct{}),
	}
}

// State reports the sink's current lifecycle state.
func (s *StoreSink) State() SinkState {
	return SinkState(s.state.Load())
}

func (s *StoreSink) setState(state SinkState) {
	s.state.Store(int32(state))
}

// Activate hands the sink a live store and starts the persistence worker.
// Only the connection manager calls this, exactly once.
func (s *StoreSink) Activate(store *logstore.Store) {
	select {
	case <-s.done:
		// Sink already closed; stay degraded.
		return
	default:
	}
	s.store = store
	s.wg.Add(1)
	go s.run()
	s.setState(StateActive)
}

// Write enqueues the record for persistence. Drops silently unless Active;
// drops (with a console note) when the queue is full rather than blocking.
func (s *StoreSink) Write(rec Record) {
	if s.State() != StateActive {
		return
	}
	select {
	case s.queue <- rec:
	case <-s.done:
	default:
		s.console.reportFailure(s.service, "log store queue full, dropping record", nil)
	}
}

// Close stops accepting records and waits for the worker to exit. Queued
// records not yet persisted are abandoned, matching shutdown semantics.
// Safe to call multiple times. The store handle itself is closed by the
// connection manager.
func (s *StoreSink) Close() {
	s.closeOnce.Do(func() {
		s.setState(StateDegraded)
		close(s.done)
	})
	s.wg.Wait()
}

func (s *StoreSink) run() {
	defer s.wg.Done()
	for {
		select {
		case rec := <-s.queue:
			s.persist(rec)
		case <-s.done:
			return
		}
	}
}

func (s *StoreSink) persist(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()

	err := s.store.Insert(ctx, logstore.Entry{
		Time:      rec.Time,
		Level:     rec.Level.String(),
		Message:   rec.Message,
		Service:   rec.Service,
		RequestID: rec.RequestID,
		UserID:    rec.UserID,
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
		Method:    rec.Method,
		URL:       rec.URL,
		Extra:     rec.Extra,
	})
	if err != nil {
		s.console.reportFailure(s.service, "persist log record failed", err)
	}
}
