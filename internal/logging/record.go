package logging

import (
	"context"
	"time"

	"chronicle/internal/reqctx"
)

// Record is one structured log entry. Records are immutable once built;
// each sink serializes them independently.
type Record struct {
	Time      time.Time
	Level     Level
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

// newRecord assembles a record from the ambient request context, the
// instance's service name, and caller-supplied extra attributes. Service
// precedence: context service, then instance service, then process default.
func newRecord(ctx context.Context, level Level, message, service string, attrs []Attr) Record {
	rec := Record{
		Time:      time.Now().UTC(),
		Level:     level,
		Message:   message,
		Service:   service,
		RequestID: reqctx.NoRequestID,
	}

	if req, ok := reqctx.From(ctx); ok {
		rec.RequestID = req.ID
		rec.UserID = req.UserID
		rec.IP = req.IP
		rec.UserAgent = req.UserAgent
		rec.Method = req.Method
		rec.URL = req.URL
		if req.Service != "" {
			rec.Service = req.Service
		}
	}

	if rec.Service == "" {
		rec.Service = DefaultService
	}

	if len(attrs) > 0 {
		rec.Extra = extraFromAttrs(attrs)
	}
	return rec
}

// DefaultService names records from instances constructed without a
// service and contexts that carry none.
const DefaultService = "chronicle"
