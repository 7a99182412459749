package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"chronicle/internal/reqctx"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// ConsoleSink writes records synchronously as
// "<timestamp> [<LEVEL>]: <message>" lines with trailing key=value fields,
// colorized by level when the writer is a terminal. It accepts all levels
// and doubles as the fallback diagnostic channel for the other sinks.
type ConsoleSink struct {
	mu       sync.Mutex
	writer   io.Writer
	colorize bool
}

// NewConsoleSink wraps w, enabling color when w is a terminal.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w, colorize: writerIsTerminal(w)}
}

// NewColorConsoleSink wraps w with an explicit color decision. Tests and
// non-TTY deployments use this to pin the output format.
func NewColorConsoleSink(w io.Writer, colorize bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{writer: w, colorize: colorize}
}

// Write renders and emits the record. Output errors are swallowed; the
// console is the diagnostic channel of last resort.
func (s *ConsoleSink) Write(rec Record) {
	var buf bytes.Buffer
	buf.Grow(128 + len(rec.Extra)*24)

	buf.WriteString(rec.Time.UTC().Format(time.RFC3339))
	buf.WriteString(" [")
	if s.colorize {
		buf.WriteString(levelColor(rec.Level))
		buf.WriteString(rec.Level.Label())
		buf.WriteString(ansiReset)
	} else {
		buf.WriteString(rec.Level.Label())
	}
	buf.WriteString("]: ")
	buf.WriteString(rec.Message)

	writeFields(&buf, rec)
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(buf.Bytes())
}

// reportFailure emits an internal diagnostic about another sink's fault.
func (s *ConsoleSink) reportFailure(service, message string, err error) {
	rec := Record{
		Time:      time.Now().UTC(),
		Level:     LevelWarn,
		Message:   message,
		Service:   service,
		RequestID: reqctx.NoRequestID,
	}
	if err != nil {
		rec.Extra = map[string]any{"error": err.Error()}
	}
	s.Write(rec)
}

func writeFields(buf *bytes.Buffer, rec Record) {
	writeField(buf, "service", rec.Service)
	writeField(buf, "request_id", rec.RequestID)
	writeField(buf, "user_id", rec.UserID)
	writeField(buf, "ip", rec.IP)
	writeField(buf, "method", rec.Method)
	writeField(buf, "url", rec.URL)

	if len(rec.Extra) == 0 {
		return
	}
	keys := make([]string, 0, len(rec.Extra))
	for key := range rec.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		writeField(buf, key, formatExtra(rec.Extra[key]))
	}
}

func writeField(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	if needsQuotes(value) {
		buf.WriteString(strconv.Quote(value))
	} else {
		buf.WriteString(value)
	}
}

func formatExtra(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case error:
		return v.Error()
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	default:
		return formatAny(v)
	}
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}

func levelColor(level Level) string {
	switch level {
	case LevelDebug:
		return ansiBlue
	case LevelInfo:
		return ansiGreen
	case LevelWarn:
		return ansiYellow
	case LevelError:
		return ansiRed
	default:
		return ""
	}
}

func formatAny(value any) string {
	return fmt.Sprint(value)
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
