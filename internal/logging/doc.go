// Package logging assembles structured slog loggers and formatting helpers used
// across truinconv.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so converter code can tag log
// lines with batch identifiers, categories, and file paths. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
