package preflight

import (
	"context"

	"clipgif/internal/config"
	"clipgif/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the checks a conversion depends on: external binaries,
// the scratch directory and its free space, and the lock directory.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result

	ffmpegPath := deps.ResolveFFmpegPath(cfg.FFmpeg.Binary)
	ffprobePath := deps.ResolveFFprobePath(cfg.FFmpeg.FFprobeBinary, ffmpegPath)
	for _, status := range deps.CheckBinaries(deps.Requirements(ffmpegPath, ffprobePath, cfg.FFmpeg.ProbeSource)) {
		results = append(results, CheckBinary(status))
	}

	if ctx.Err() != nil {
		return results
	}

	scratch := cfg.ScratchDir()
	results = append(results, CheckDirectoryAccess("Scratch directory", scratch))
	results = append(results, CheckFreeSpace("Scratch free space", scratch, minFreeBytes))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
