// Package observability provides metrics extensions that turn scheduler
// lifecycle hooks into OpenTelemetry or Prometheus instruments. Register
// one (or both) to track registrations, attempt outcomes, retries,
// stalls, durations, and the number of in-flight runs.
//
// For per-attempt metrics and spans recorded inside the execution
// chain, see the middleware package: middleware.Metrics() and
// middleware.Tracing().
package observability
