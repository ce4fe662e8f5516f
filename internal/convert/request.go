package convert

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Request describes one conversion. It is not modified once a run starts.
type Request struct {
	SourcePath      string
	DurationLimit   time.Duration
	DestinationPath string
}

// Outcome labels how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// RunSummary reports what a run did, for display only.
type RunSummary struct {
	RunID   string
	Source  string
	Output  string
	Frames  int
	Written int
	Elapsed time.Duration
	Outcome Outcome
}

// ResolveOutputPath returns where the GIF is written. When source is a regular
// file the output sits next to it with a .gif extension, overriding
// destination; otherwise destination is used as given.
func ResolveOutputPath(source, destination string) string {
	info, err := os.Stat(source)
	if err != nil || !info.Mode().IsRegular() {
		return destination
	}
	// A leading dot alone marks a hidden file, not an extension.
	ext := filepath.Ext(source)
	if ext == filepath.Base(source) {
		ext = ""
	}
	return strings.TrimSuffix(source, ext) + ".gif"
}
