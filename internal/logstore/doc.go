// Package logstore persists structured log records to SQLite.
//
// It owns the schema for the logs table, keeps request_id and service
// indexed so persisted records stay addressable by correlation id, and
// exposes the narrow insert/lookup surface the logging sinks and the CLI
// status view need. Connection supervision lives in internal/logging; this
// package only opens, migrates, and reads/writes the database.
package logstore
