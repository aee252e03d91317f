// Package middleware provides HTTP middleware for Reflow sync servers:
// Prometheus request metrics and OpenTelemetry tracing.
//
// Both are standard net/http middleware and compose with any router:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus())
//	r.Use(middleware.OpenTelemetry())
package middleware
