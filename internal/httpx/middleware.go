package httpx

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"chronicle/internal/reqctx"
)

// RequestIDHeader is honored on inbound requests and echoed on responses so
// callers can correlate their own traces with persisted log records.
const RequestIDHeader = "X-Request-ID"

// RequestContext returns middleware that binds a reqctx.Request for the
// full handling chain of each request. The request ID comes from the
// inbound header when present, otherwise a fresh UUID.
func RequestContext(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		ctx := reqctx.Bind(r.Context(), reqctx.Request{
			ID:        id,
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
			Method:    r.Method,
			URL:       r.URL.Path,
			Service:   service,
		})

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
