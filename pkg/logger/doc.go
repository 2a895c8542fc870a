// Package logger builds the structured slog logger used across the front
// server: text output for local development, JSON in production, with the
// service name and environment attached to every record.
package logger
