// Package logging provides structured logging utilities with context propagation.
//
// Loggers are JSON on stdout for the servers and text on stderr for the CLI.
// Request-scoped loggers carry request_id and trace_id and travel through
// contexts with WithLogger / FromContext.
//
//	logger := logging.NewLogger()
//	ctx = logging.WithLogger(ctx, logging.ForRequest(ctx, logger))
//	logging.FromContext(ctx).Info("article created", slog.String("slug", s))
package logging
