package logstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages log record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is the persisted shape of a log record. Extra fields travel as a
// JSON object so the schema stays stable across callers.
type Entry struct {
	ID        int64
	Time      time.Time
	Level     string
	Message   string
	Service   string
	RequestID string
	UserID    string
	IP        string
	UserAgent string
	Method    string
	URL       string
	Extra     map[string]any
}

// ServiceCount pairs a service name with its persisted record count.
type ServiceCount struct {
	Service string
	Count   int64
}

// Open connects to the log database at path, applies pragmas, and ensures
// the schema is present. The parent directory is created if missing. The
// context bounds the initial round trips; callers supply a deadline when
// they need the connection attempt itself to time out.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("logstore: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Insert persists one log entry.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	var extraJSON any
	if len(entry.Extra) > 0 {
		encoded, err := json.Marshal(entry.Extra)
		if err != nil {
			return fmt.Errorf("marshal extra fields: %w", err)
		}
		extraJSON = string(encoded)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO logs (
            ts, level, message, service, request_id,
            user_id, ip, user_agent, method, url, extra_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Time.UTC().Format(time.RFC3339Nano),
		entry.Level,
		entry.Message,
		entry.Service,
		entry.RequestID,
		nullableString(entry.UserID),
		nullableString(entry.IP),
		nullableString(entry.UserAgent),
		nullableString(entry.Method),
		nullableString(entry.URL),
		extraJSON,
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// ByRequestID returns all entries persisted for one correlation identifier,
// oldest first.
func (s *Store) ByRequestID(ctx context.Context, requestID string) ([]Entry, error) {
	return s.query(ctx, "request_id = ?", requestID)
}

// ByService returns all entries persisted for one service, oldest first.
func (s *Store) ByService(ctx context.Context, service string) ([]Entry, error) {
	return s.query(ctx, "service = ?", service)
}

// CountByService reports how many entries each service has persisted.
func (s *Store) CountByService(ctx context.Context) ([]ServiceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT service, COUNT(1) FROM logs GROUP BY service ORDER BY service")
	if err != nil {
		return nil, fmt.Errorf("count by service: %w", err)
	}
	defer rows.Close()

	var counts []ServiceCount
	for rows.Next() {
		var sc ServiceCount
		if err := rows.Scan(&sc.Service, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan service count: %w", err)
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (s *Store) query(ctx context.Context, where string, arg any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, level, message, service, request_id,
            user_id, ip, user_agent, method, url, extra_json
         FROM logs WHERE `+where+` ORDER BY id ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry     Entry
		ts        string
		userID    sql.NullString
		ip        sql.NullString
		userAgent sql.NullString
		method    sql.NullString
		url       sql.NullString
		extraJSON sql.NullString
	)
	if err := rows.Scan(
		&entry.ID, &ts, &entry.Level, &entry.Message, &entry.Service,
		&entry.RequestID, &userID, &ip, &userAgent, &method, &url, &extraJSON,
	); err != nil {
		return Entry{}, fmt.Errorf("scan log entry: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("parse entry timestamp %q: %w", ts, err)
	}
	entry.Time = parsed
	entry.UserID = userID.String
	entry.IP = ip.String
	entry.UserAgent = userAgent.String
	entry.Method = method.String
	entry.URL = url.String

	if extraJSON.Valid && extraJSON.String != "" {
		if err := json.Unmarshal([]byte(extraJSON.String), &entry.Extra); err != nil {
			return Entry{}, fmt.Errorf("decode extra fields: %w", err)
		}
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
