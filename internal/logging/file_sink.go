package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink appends error-level records to a log file. The target directory
// is created on first write. Write failures are reported through the
// console sink and never surfaced to the caller.
type FileSink struct {
	path    string
	console *ConsoleSink
	service string

	mu   sync.Mutex
	file *os.File
	// failed suppresses repeated open attempts after a hard failure so a
	// broken disk does not turn every log call into a console warning storm.
	failed bool
}

// NewFileSink creates a sink that appends to path. Nothing is touched on
// disk until the first error-level record arrives.
func NewFileSink(path, service string, console *ConsoleSink) *FileSink {
	return &FileSink{path: path, console: console, service: service}
}

// Write appends the record if it is error level; all other levels are
// ignored by contract.
func (s *FileSink) Write(rec Record) {
	if rec.Level != LevelError {
		return
	}

	var buf bytes.Buffer
	buf.WriteString(rec.Time.UTC().Format(time.RFC3339))
	buf.WriteString(" [")
	buf.WriteString(rec.Level.Label())
	buf.WriteString("]: ")
	buf.WriteString(rec.Message)
	writeFields(&buf, rec)
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFile(); err != nil {
		if !s.failed {
			s.failed = true
			s.console.reportFailure(s.service, "error log file unavailable", err)
		}
		return
	}

	if _, err := s.file.Write(buf.Bytes()); err != nil {
		s.console.reportFailure(s.service, "error log file write failed", err)
	}
}

// Close releases the file handle. Safe to call multiple times.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *FileSink) ensureFile() error {
	if s.file != nil {
		return nil
	}
	if s.failed {
		return fmt.Errorf("file sink previously failed to open %s", s.path)
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return fmt.Errorf("open error log %s: %w", s.path, err)
	}
	s.file = file
	return nil
}
