// Package frames discovers the still images written by the extractor and
// orders them for encoding.
package frames

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"clipgif/internal/services"
)

const framePrefix = "frame_"

// Frame is one extracted still image, indexed by the numeric suffix of its name.
type Frame struct {
	Path  string
	Index int
}

// Collect returns the frames in dir with the given extension in extraction
// order. Zero-padded names sort the same lexically and numerically; the parsed
// index keeps order once a counter outgrows its padding. Names without a
// numeric suffix sort last by name. It fails with an empty result error when
// nothing matches.
func Collect(dir, ext string) ([]Frame, error) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		ext = "png"
	}
	pattern := filepath.Join(dir, framePrefix+"*."+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, services.Wrap(services.ErrFrameDiscovery, "collect", "glob", fmt.Sprintf("pattern %q", pattern), err)
	}
	if len(matches) == 0 {
		return nil, services.Wrap(services.ErrEmptyResult, "collect", "scan", "No frames found", nil)
	}

	frames := make([]Frame, 0, len(matches))
	for _, path := range matches {
		frames = append(frames, Frame{Path: path, Index: parseIndex(filepath.Base(path), ext)})
	}
	sort.Slice(frames, func(i, j int) bool {
		a, b := frames[i], frames[j]
		if (a.Index < 0) != (b.Index < 0) {
			return a.Index >= 0
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return filepath.Base(a.Path) < filepath.Base(b.Path)
	})
	return frames, nil
}

// parseIndex returns the numeric suffix of name, or -1 when it is not numeric.
func parseIndex(name, ext string) int {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, framePrefix), "."+ext)
	n, err := strconv.Atoi(stem)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
