// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and decodes the streams and container format. Helper
// methods expose the values the converter reports before extraction: the
// clip duration, the primary video resolution and its frame rate.
package ffprobe
