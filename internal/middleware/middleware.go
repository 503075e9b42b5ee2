// Package middleware holds the global and route-level Echo middleware:
// request ids, request-scoped logging, tracing, CORS, rate limiting,
// panic recovery, Clerk authentication and the global error handler.
package middleware
