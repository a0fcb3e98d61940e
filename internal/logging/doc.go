// Package logging assembles the structured slog loggers used across
// framesight.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log
// lines with analysis IDs and stage names. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
