// Package convert owns the clip to GIF procedure.
//
// Converter.Run sequences extraction, frame collection and encoding inside a
// per-run temporary directory and reports status text and percentage progress
// through a shared State. Controller is the boundary the presentation layer
// talks to: it starts at most one background run, forwards cancellation
// requests, and hands out snapshots of the state.
//
// Cancellation is cooperative and checked once per frame; it never interrupts
// ffmpeg. Cancelling the context passed to Start does, and is reserved for
// hard stops.
package convert
