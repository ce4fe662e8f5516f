package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipgif/internal/convert"
	"clipgif/internal/services"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

var phaseCaser = cases.Title(language.Und)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// phaseLabel renders a phase for humans, e.g. "cancelling" as "Cancelling".
func phaseLabel(phase convert.Phase) string {
	if phase == "" {
		return ""
	}
	return phaseCaser.String(string(phase))
}

// snapshotLine renders one live progress line.
func snapshotLine(s convert.Snapshot) string {
	status := s.Status
	if s.Phase == convert.PhaseCancelling {
		status = phaseLabel(s.Phase) + "..."
	}
	return fmt.Sprintf("[%3d%%] %s", s.Progress, status)
}

// summaryLines renders the final report for a run.
func summaryLines(summary convert.RunSummary, runErr error, colorize bool) []string {
	var lines []string
	switch summary.Outcome {
	case convert.OutcomeCompleted:
		lines = append(lines, renderStatusLine("Result", statusOK, "Completed", colorize))
	case convert.OutcomeCancelled:
		lines = append(lines, renderStatusLine("Result", statusWarn, "Cancelled", colorize))
	default:
		msg := "Failed"
		if kind := services.Kind(runErr); kind != "" {
			msg = fmt.Sprintf("Failed (%s)", strings.ReplaceAll(kind, "_", " "))
		}
		lines = append(lines, renderStatusLine("Result", statusError, msg, colorize))
	}
	if summary.Output != "" && summary.Outcome != convert.OutcomeFailed {
		lines = append(lines, renderStatusLine("Output", statusInfo, summary.Output, colorize))
	}
	if summary.Frames > 0 {
		lines = append(lines, renderStatusLine("Frames", statusInfo,
			fmt.Sprintf("%d of %d written", summary.Written, summary.Frames), colorize))
	}
	lines = append(lines, renderStatusLine("Elapsed", statusInfo, summary.Elapsed.Round(10*time.Millisecond).String(), colorize))
	if summary.RunID != "" {
		lines = append(lines, renderStatusLine("Run ID", statusInfo, summary.RunID, colorize))
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
