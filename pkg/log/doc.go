// Package log builds [log/slog] handlers for the CLI and carries loggers
// through contexts.
package log
