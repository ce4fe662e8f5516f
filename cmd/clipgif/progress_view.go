package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"clipgif/internal/convert"
	"clipgif/internal/logging"
)

// progressView renders a live go-pretty progress bar from polled snapshots.
type progressView struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

func newProgressView(w io.Writer) *progressView {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Value = false

	tracker := &progress.Tracker{Message: convert.StatusProcessing, Total: 100, Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()
	return &progressView{pw: pw, tracker: tracker}
}

func (v *progressView) update(s convert.Snapshot) {
	v.tracker.SetValue(int64(s.Progress))
	status := s.Status
	if s.Phase == convert.PhaseCancelling {
		status = phaseLabel(s.Phase) + "..."
	}
	v.tracker.UpdateMessage(status)
}

func (v *progressView) finish(outcome convert.Outcome) {
	if outcome == convert.OutcomeFailed {
		v.tracker.MarkAsErrored()
	} else {
		v.tracker.MarkAsDone()
	}
	// Let the renderer draw the final state before stopping it.
	time.Sleep(150 * time.Millisecond)
	v.pw.Stop()
	for v.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

// pollProgress drives view from ctrl.Snapshot on a ticker until done closes.
func pollProgress(ctrl *convert.Controller, view *progressView, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			view.update(ctrl.Snapshot())
			return
		case <-ticker.C:
			view.update(ctrl.Snapshot())
		}
	}
}

// lineReporter prints a line when the status changes or progress crosses a
// 10% bucket. It is driven by State.Subscribe.
type lineReporter struct {
	mu      sync.Mutex
	w       io.Writer
	sampler *logging.ProgressSampler
	last    string
}

func newLineReporter(w io.Writer) *lineReporter {
	return &lineReporter{w: w, sampler: logging.NewProgressSampler(10)}
}

func (r *lineReporter) observe(s convert.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := snapshotLine(s)
	if line == r.last {
		return
	}
	status := s.Status
	if s.Phase == convert.PhaseCancelling {
		status = string(s.Phase)
	}
	if !r.sampler.ShouldLog(s.Progress, status) {
		return
	}
	r.last = line
	fmt.Fprintln(r.w, line)
}
