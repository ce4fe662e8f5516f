// Package main hosts the clipgif CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the extractor,
// converter and controller from it, and renders the shared conversion state
// while a run is in flight. Conversion logic lives in internal/convert; this
// package only starts runs, forwards cancellation, and reports results.
package main
