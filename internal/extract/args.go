package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FramePrefix is the filename prefix shared by every extracted frame.
const FramePrefix = "frame_"

// FramePattern returns the ffmpeg output pattern for the given image extension.
func FramePattern(ext string) string {
	return FramePrefix + "%05d." + normalizeExt(ext)
}

// FormatLimit renders d as HH:MM:SS.mmm for ffmpeg's -t option.
func FormatLimit(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
}

// BuildArgs assembles the ffmpeg argument list for one extraction.
func BuildArgs(source string, limit time.Duration, dir string, fps int, ext string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-t", FormatLimit(limit),
		"-vf", fmt.Sprintf("fps=%d", fps),
		filepath.Join(dir, FramePattern(ext)),
		"-y",
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return "png"
	}
	return ext
}
