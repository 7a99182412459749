// Package daemon runs the chronicled process: a single-instance HTTP
// listener that binds request contexts, logs through the shared registry,
// and exposes health and logger-status endpoints.
package daemon
