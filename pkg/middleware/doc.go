// Package middleware provides HTTP middleware for the live server.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//   - Request logging with slog
//
// Every middleware has the func(http.Handler) http.Handler shape, so it
// plugs into chi.Router.Use or wraps any handler.
//
// # OpenTelemetry Middleware
//
// Each request gets a server span named after its method and chi route
// pattern, for example "HTTP GET /ws". The span lives in the request
// context:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerProvider(tp),
//	))
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - requery_http_requests_total: requests by route, method and status
//   - requery_http_request_duration_seconds: request duration histogram
//   - requery_http_requests_in_flight: requests being served
//
//	r.Use(middleware.Prometheus(
//	    middleware.WithRegistry(reg),
//	    middleware.WithNamespace("myapp"),
//	))
//
// Route labels use the chi pattern, so the middleware must be installed on
// a chi router with Use to see it. Elsewhere requests are labelled
// "unmatched".
package middleware
