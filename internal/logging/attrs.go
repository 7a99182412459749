package logging

import (
	"log/slog"
	"time"
)

// Attr is the caller-facing extra-field type. Aliasing slog.Attr keeps
// call sites idiomatic and lets records interoperate with slog tooling.
type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Err(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// extraFromAttrs flattens attrs into the Extra map carried by a Record.
// Later keys win; group attrs flatten with dotted keys.
func extraFromAttrs(attrs []Attr) map[string]any {
	extra := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		addAttr(extra, "", attr)
	}
	return extra
}

func addAttr(extra map[string]any, prefix string, attr Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	key := attr.Key
	if prefix != "" {
		if key != "" {
			key = prefix + "." + key
		} else {
			key = prefix
		}
	}

	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			addAttr(extra, key, member)
		}
		return
	}
	if key == "" {
		return
	}

	switch value.Kind() {
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			extra[key] = err.Error()
			return
		}
		extra[key] = value.Any()
	case slog.KindDuration:
		extra[key] = value.Duration().String()
	case slog.KindTime:
		extra[key] = value.Time().UTC().Format(time.RFC3339)
	default:
		extra[key] = value.Any()
	}
}
