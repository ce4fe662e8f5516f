// Package logging assembles structured slog loggers for clipgif.
//
// It owns the console and JSON handlers, the optional rotating log file, and
// context helpers that tag lines with the run ID, stage and source clip of
// the conversion in progress.
package logging
