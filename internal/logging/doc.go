// Package logging assembles the structured slog loggers used across the
// storyforge studio.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so pipeline code can tag log lines
// with panel and project identifiers uniformly. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
