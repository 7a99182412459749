package logging

import "strings"

// Level classifies a log record's severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name used in persisted records.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Label returns the uppercase tag used in console and file lines.
func (l Level) Label() string {
	return strings.ToUpper(l.String())
}

// ParseLevel maps a configuration string to a Level. Unknown values fall
// back to debug so misconfiguration never silences output.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "debug", "":
		return LevelDebug
	default:
		return LevelDebug
	}
}
