// Package reqctx carries per-request attributes through an asynchronous
// call chain without explicit parameter threading.
//
// A Request bag is bound to a context.Context at the edge of the system
// (typically by HTTP middleware) and recovered by the logging facade deep
// inside business logic. Bags are immutable once bound; two concurrent
// request chains never observe each other's values.
package reqctx
