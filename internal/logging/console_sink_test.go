package logging_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"chronicle/internal/logging"
)

func testRecord(level logging.Level, message string) logging.Record {
	return logging.Record{
		Time:      time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:     level,
		Message:   message,
		Service:   "api",
		RequestID: "req-1",
	}
}

func TestConsoleSinkFormatsHeader(t *testing.T) {
	var buf bytes.Buffer
	sink := logging.NewColorConsoleSink(&buf, false)

	sink.Write(testRecord(logging.LevelInfo, "hello"))

	line := buf.String()
	if !strings.HasPrefix(line, "2026-03-14T09:26:53Z [INFO]: hello") {
		t.Fatalf("unexpected header: %q", line)
	}
	if !strings.Contains(line, "service=api") || !strings.Contains(line, "request_id=req-1") {
		t.Fatalf("expected context fields in line: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected trailing newline: %q", line)
	}
}

func TestConsoleSinkColorizesLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := logging.NewColorConsoleSink(&buf, true)

	sink.Write(testRecord(logging.LevelError, "boom"))

	line := buf.String()
	if !strings.Contains(line, "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected red ERROR tag, got %q", line)
	}
}

func TestConsoleSinkSortsExtraFields(t *testing.T) {
	var buf bytes.Buffer
	sink := logging.NewColorConsoleSink(&buf, false)

	rec := testRecord(logging.LevelWarn, "slow query")
	rec.Extra = map[string]any{"zeta": "z", "alpha": 5, "ok": true}
	sink.Write(rec)

	line := buf.String()
	alpha := strings.Index(line, "alpha=5")
	ok := strings.Index(line, "ok=true")
	zeta := strings.Index(line, "zeta=z")
	if alpha == -1 || ok == -1 || zeta == -1 {
		t.Fatalf("missing extra fields: %q", line)
	}
	if !(alpha < ok && ok < zeta) {
		t.Fatalf("extra fields not sorted: %q", line)
	}
}

func TestConsoleSinkQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	sink := logging.NewColorConsoleSink(&buf, false)

	rec := testRecord(logging.LevelDebug, "trace")
	rec.UserAgent = "Mozilla/5.0 (X11; Linux)"
	sink.Write(rec)

	if !strings.Contains(buf.String(), `user_agent="Mozilla/5.0 (X11; Linux)"`) {
		t.Fatalf("expected quoted user agent, got %q", buf.String())
	}
}

func TestConsoleSinkAcceptsAllLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := logging.NewColorConsoleSink(&buf, false)

	for _, level := range []logging.Level{logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError} {
		sink.Write(testRecord(level, "msg"))
	}
	if got := strings.Count(buf.String(), "\n"); got != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", got, buf.String())
	}
}
