// Package extract runs ffmpeg to decode a time-bounded slice of a clip into a
// numbered sequence of still images.
//
// Extraction blocks until ffmpeg exits. A non-zero exit becomes an external
// tool error carrying the binary and its trimmed stderr; an expired timeout
// becomes a timeout error. While ffmpeg runs, an optional fsnotify watcher
// reports how many frame files have appeared so far.
package extract
