// Package httpx holds the thin HTTP collaborators around the logging core:
// the request-ID middleware that binds a request context for the rest of
// the call chain, the JSON response envelope, and the error-to-status
// translation table. None of it carries state; the interesting lifecycle
// lives in internal/logging.
package httpx
