// Package logging is chronicle's resilient, context-aware structured
// logging facade.
//
// A Logger fans every record out to independent sinks: a colorized console
// sink, an error-only file sink, and a SQLite-backed store sink that is
// upgraded in the background by a connection manager with bounded retry.
// Logging operations never block on store readiness and never return errors
// to callers; sink failures terminate in a console diagnostic.
//
// Loggers are obtained from a Registry, which guarantees one instance per
// service name under concurrent first use. Prefer the Registry over direct
// construction so connection supervision runs exactly once per service.
package logging
