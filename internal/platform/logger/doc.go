// Package logger configures structured logging for the application.
//
// It builds a log/slog JSON or text handler at the configured level, wraps
// it so that API keys and bearer tokens never reach the output, and carries
// request-scoped loggers through a context.Context.
package logger
