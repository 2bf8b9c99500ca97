// Package middleware provides request middleware for the tool host.
//
// Each middleware wraps the next HandlerFunc, so cross-cutting work runs
// before and after dispatch:
//
//	handler := middleware.Chain(
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	    middleware.OTel(middleware.WithOTelServiceName("echo-server")),
//	)(dispatch)
//
// Available middleware:
//
//   - Recover: converts panics into internal errors
//   - RequestID: tags the context with a ULID
//   - Logging: one structured log entry per request
//   - OTel: OpenTelemetry spans and request metrics
//   - SizeLimit: rejects oversized params with invalid params
//
// DefaultStack and ProductionStack assemble the usual combinations. The
// dispatcher in the root package installs Recover outermost on its own.
package middleware
