package reqctx

import "context"

// NoRequestID is the sentinel used when a log call happens outside any
// bound request chain (startup, background workers).
const NoRequestID = "no-id"

// Request is the per-request attribute bag. ID is always populated;
// everything else is best effort. Values are read-only after Bind.
type Request struct {
	ID        string
	UserID    string
	IP        string
	UserAgent string
	Method    string
	URL       string
	Service   string
}

type contextKey string

const requestKey contextKey = "request"

// Bind annotates ctx with the request bag for the remainder of the call
// chain. An empty ID is replaced with the NoRequestID sentinel.
func Bind(ctx context.Context, req Request) context.Context {
	if req.ID == "" {
		req.ID = NoRequestID
	}
	return context.WithValue(ctx, requestKey, req)
}

// From extracts the bound request bag if present.
func From(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}
	if req, ok := ctx.Value(requestKey).(Request); ok {
		return req, true
	}
	return Request{}, false
}

// Run executes fn with req bound as the ambient request for fn and
// everything it spawns from the derived context.
func Run(ctx context.Context, req Request, fn func(context.Context)) {
	fn(Bind(ctx, req))
}
