// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog loggers with request and trace correlation
//   - metrics: Prometheus registry and business recorders
//   - tracing: OpenTelemetry provider setup and HTTP middleware
package observability
