package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"
)

// Options describes logger construction parameters.
type Options struct {
	// Service stamps records that carry no service in their request
	// context. Empty falls back to DefaultService.
	Service string
	// MinLevel gates dispatch to all sinks. Zero value is LevelDebug.
	MinLevel Level
	// ConsoleWriter receives console output; defaults to os.Stdout.
	// Color is auto-detected from the writer.
	ConsoleWriter io.Writer
	// ErrorFilePath enables the error-only file sink when non-empty.
	ErrorFilePath string
	// StorePath is the persistent store connection string. Empty leaves
	// the store sink permanently degraded (console/file-only logging).
	StorePath string
	// ConnectTimeout bounds a single store connection attempt.
	ConnectTimeout time.Duration
}

// Logger is the public logging facade. All operations are non-blocking from
// the caller's perspective and never return errors; failures terminate in a
// console diagnostic.
type Logger struct {
	service  string
	minLevel Level

	console   *ConsoleSink
	fileSink  *FileSink
	storeSink *StoreSink
	manager   *ConnectionManager
	sinks     []Sink

	closeOnce sync.Once
	closeErr  error
}

// New constructs a logger and starts store connection supervision in the
// background. Construction itself never blocks on I/O.
func New(opts Options) *Logger {
	service := opts.Service
	if service == "" {
		service = DefaultService
	}

	writer := opts.ConsoleWriter
	if writer == nil {
		writer = os.Stdout
	}
	console := NewConsoleSink(writer)

	logger := &Logger{
		service:  service,
		minLevel: opts.MinLevel,
		console:  console,
		sinks:    []Sink{console},
	}

	if opts.ErrorFilePath != "" {
		logger.fileSink = NewFileSink(opts.ErrorFilePath, service, console)
		logger.sinks = append(logger.sinks, logger.fileSink)
	}

	logger.storeSink = NewStoreSink(service, console)
	logger.sinks = append(logger.sinks, logger.storeSink)
	logger.manager = newConnectionManager(opts.StorePath, opts.ConnectTimeout, service, console, logger.storeSink)
	if opts.StorePath == "" {
		logger.storeSink.setState(StateDegraded)
	}
	logger.manager.Start()

	return logger
}

// Debug logs a debug-level message with optional extra fields.
func (l *Logger) Debug(ctx context.Context, message string, extra ...Attr) {
	l.log(ctx, LevelDebug, message, extra)
}

// Info logs an info-level message with optional extra fields.
func (l *Logger) Info(ctx context.Context, message string, extra ...Attr) {
	l.log(ctx, LevelInfo, message, extra)
}

// Warn logs a warn-level message with optional extra fields.
func (l *Logger) Warn(ctx context.Context, message string, extra ...Attr) {
	l.log(ctx, LevelWarn, message, extra)
}

// Error logs an error-level message with optional extra fields.
func (l *Logger) Error(ctx context.Context, message string, extra ...Attr) {
	l.log(ctx, LevelError, message, extra)
}

func (l *Logger) log(ctx context.Context, level Level, message string, extra []Attr) {
	if level < l.minLevel {
		return
	}
	rec := newRecord(ctx, level, message, l.service, extra)
	for _, sink := range l.sinks {
		sink.Write(rec)
	}
}

// Service returns the instance's configured service name.
func (l *Logger) Service() string {
	return l.service
}

// StoreState reports the persistent-store sink's lifecycle state.
func (l *Logger) StoreState() SinkState {
	return l.storeSink.State()
}

// ConnectionState reports the connection manager's lifecycle state.
func (l *Logger) ConnectionState() ConnState {
	return l.manager.State()
}

// WaitForStore blocks until any in-flight connection attempt finishes or
// ctx ends. Tests and shutdown paths use it; logging operations never do.
func (l *Logger) WaitForStore(ctx context.Context) {
	l.manager.Wait(ctx)
}

// RetryStore re-triggers connection establishment after a terminal failure.
func (l *Logger) RetryStore() {
	l.manager.Retry()
}

// Close releases the persistent-store connection and file handle. It is
// idempotent; the second call is a no-op returning the first result.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		// Let any in-flight connection attempt settle before tearing the
		// sink down so a late Activate cannot race the shutdown.
		l.manager.Wait(context.Background())
		l.storeSink.Close()
		l.closeErr = l.manager.Close()
		if l.fileSink != nil {
			if err := l.fileSink.Close(); err != nil && l.closeErr == nil {
				l.closeErr = err
			}
		}
	})
	return l.closeErr
}
