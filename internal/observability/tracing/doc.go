// Package tracing provides OpenTelemetry tracing integration.
//
// Setup installs the SDK provider once per process. Middleware opens a
// server span per HTTP request; the content service opens internal spans
// around each query through GetTracer.
package tracing
