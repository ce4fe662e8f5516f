// Package services defines shared utilities consumed by the conversion
// pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source paths for
//     logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is regardless of how deeply they were wrapped.
//
// Use these helpers when wiring new stage logic so error reporting and
// observability stay uniform across the pipeline.
package services
