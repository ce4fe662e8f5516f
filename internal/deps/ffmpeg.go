package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultFFmpeg  = "ffmpeg"
	defaultFFprobe = "ffprobe"
)

// ResolveFFmpegPath returns the ffmpeg command to execute. A configured value
// is resolved through PATH when possible and returned unchanged otherwise, so
// the failure surfaces when the process is spawned.
func ResolveFFmpegPath(configured string) string {
	return resolve(configured, defaultFFmpeg)
}

// ResolveFFprobePath returns the ffprobe command to execute. When the default
// name is configured and an ffprobe binary sits next to the resolved ffmpeg,
// the sibling wins so both tools come from the same build.
func ResolveFFprobePath(configured, ffmpegPath string) string {
	trimmed := strings.TrimSpace(configured)
	if trimmed == "" || trimmed == defaultFFprobe {
		if candidate, ok := siblingBinary(ffmpegPath, defaultFFprobe); ok {
			return candidate
		}
	}
	return resolve(trimmed, defaultFFprobe)
}

// Requirements lists the binaries a conversion needs.
func Requirements(ffmpegPath, ffprobePath string, probeEnabled bool) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegPath,
			Description: "Required for frame extraction",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobePath,
			Description: "Inspects source clips before extraction",
			Optional:    !probeEnabled,
		},
	}
}

func resolve(configured, fallback string) string {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = fallback
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}
	return name
}

func siblingBinary(path, name string) (string, bool) {
	if strings.TrimSpace(path) == "" || !filepath.IsAbs(path) {
		return "", false
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(path), name)
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
