package logging

import (
	"sync"
	"time"

	"chronicle/internal/config"
)

// Registry guarantees at most one Logger per logical service name, safe
// under concurrent first use. It is explicit process-wide state: construct
// one at startup and pass it to whatever needs loggers.
type Registry struct {
	opts Options

	mu        sync.Mutex
	instances map[string]*Logger
}

// NewRegistry creates a registry whose loggers share the given options;
// only Service varies per instance.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:      opts,
		instances: make(map[string]*Logger),
	}
}

// NewRegistryFromConfig maps application configuration onto registry
// options.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	opts := Options{
		MinLevel: ParseLevel(cfg.Logging.Level),
	}
	if cfg.Service != "" {
		opts.Service = cfg.Service
	}
	if cfg.Logging.ErrorFile != "" {
		opts.ErrorFilePath = cfg.ErrorFilePath()
	}
	if cfg.Store.Path != "" {
		opts.StorePath = cfg.Store.Path
		opts.ConnectTimeout = time.Duration(cfg.Store.ConnectTimeout) * time.Second
	}
	return NewRegistry(opts)
}

// GetOrCreate returns the existing logger for service, constructing exactly
// one (and starting its connection supervision exactly once) under
// concurrent first calls.
func (r *Registry) GetOrCreate(service string) *Logger {
	if service == "" {
		service = r.opts.Service
	}
	if service == "" {
		service = DefaultService
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if logger, ok := r.instances[service]; ok {
		return logger
	}

	opts := r.opts
	opts.Service = service
	logger := New(opts)
	r.instances[service] = logger
	return logger
}

// CloseAll closes every constructed logger. The first error wins; closing
// is idempotent per instance.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	loggers := make([]*Logger, 0, len(r.instances))
	for _, logger := range r.instances {
		loggers = append(loggers, logger)
	}
	r.mu.Unlock()

	var firstErr error
	for _, logger := range loggers {
		if err := logger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
