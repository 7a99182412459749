package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"chronicle/internal/config"
	"chronicle/internal/httpx"
	"chronicle/internal/logging"
)

// Daemon owns the chronicled process lifecycle: the instance lock, the HTTP
// listener, and the logger registry shutdown.
type Daemon struct {
	cfg      *config.Config
	registry *logging.Registry
	logger   *logging.Logger

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	listener net.Listener
	server   *http.Server
}

// New wires a daemon from configuration and a logger registry.
func New(cfg *config.Config, registry *logging.Registry) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if registry == nil {
		return nil, errors.New("logger registry is required")
	}

	lockPath := filepath.Join(cfg.Logging.LogDir, "chronicled.lock")
	return &Daemon{
		cfg:      cfg,
		registry: registry,
		logger:   registry.GetOrCreate(cfg.Service),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and begins serving. It returns once the
// listener is up; serving continues until ctx is canceled or Close runs.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another chronicled instance holds %s", d.lockPath)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", d.handleHealth)
	mux.HandleFunc("/status", d.handleStatus)

	handler := httpx.RequestContext(d.cfg.Service, d.logRequests(mux))
	d.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	listener, err := net.Listen("tcp", d.cfg.API.Bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("listen on %s: %w", d.cfg.API.Bind, err)
	}
	d.listener = listener
	d.running.Store(true)

	go func() {
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error(context.Background(), "http server error", logging.Err(err))
		}
	}()

	go func() {
		<-ctx.Done()
		_ = d.Close()
	}()

	d.logger.Info(ctx, "chronicled listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address, for tests that bind port 0.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Close stops the listener, closes all loggers, and releases the lock.
// Safe to call multiple times.
func (d *Daemon) Close() error {
	if !d.running.Swap(false) {
		return nil
	}

	var firstErr error
	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}
	if err := d.registry.CloseAll(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (d *Daemon) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		d.logger.Info(r.Context(), "request handled",
			logging.Duration("elapsed", time.Since(start)))
	})
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"state": "ok"})
}

type loggerStatus struct {
	Service    string `json:"service"`
	Connection string `json:"connection"`
	StoreSink  string `json:"store_sink"`
}

func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := loggerStatus{
		Service:    d.logger.Service(),
		Connection: d.logger.ConnectionState().String(),
		StoreSink:  d.logger.StoreState().String(),
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}
