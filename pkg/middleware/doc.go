// Package middleware provides net/http observability middleware for slate
// servers.
//
// # Prometheus Metrics
//
// Prometheus records request counts, durations and in-flight requests,
// labelled by chi route pattern:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus(middleware.WithNamespace("site")))
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request and stores it in the
// request context, so render and component spans nest under it:
//
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("site")))
package middleware
