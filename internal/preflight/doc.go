// Package preflight provides readiness checks for the binaries and
// directories a conversion depends on.
//
// The CLI "check" command renders every result; "convert" runs the same
// checks and refuses to start when a required one fails. Optional checks
// (ffprobe with probing disabled) are reported but never block.
package preflight
