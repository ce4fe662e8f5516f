package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipgif/internal/media/ffprobe"
	"clipgif/internal/services"
)

// fakeExtractor writes sizes[i] PNG frames into the destination directory.
type fakeExtractor struct {
	sizes   []image.Point
	err     error
	gate    chan struct{}
	calls   int
	lastDir string
}

func framesOfSize(n, w, h int) []image.Point {
	sizes := make([]image.Point, n)
	for i := range sizes {
		sizes[i] = image.Pt(w, h)
	}
	return sizes
}

func (f *fakeExtractor) FPS() int            { return 15 }
func (f *fakeExtractor) FrameFormat() string { return "png" }

func (f *fakeExtractor) Extract(ctx context.Context, _ string, _ time.Duration, dir string, onFrame func(int)) error {
	f.calls++
	f.lastDir = dir
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	for i, size := range f.sizes {
		img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				img.Set(x, y, color.RGBA{R: uint8(i * 40), G: uint8(x * 8), B: uint8(y * 8), A: 255})
			}
		}
		file, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i+1)))
		if err != nil {
			return err
		}
		if err := png.Encode(file, img); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
		if onFrame != nil {
			onFrame(i + 1)
		}
	}
	return nil
}

type recorder struct {
	mu        sync.Mutex
	progress  []int
	statuses  []string
	snapshots []Snapshot
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	if n := len(r.progress); n == 0 || r.progress[n-1] != s.Progress {
		r.progress = append(r.progress, s.Progress)
	}
	if n := len(r.statuses); n == 0 || r.statuses[n-1] != s.Status {
		r.statuses = append(r.statuses, s.Status)
	}
}

func newTestConverter(t *testing.T, ext Extractor, opts Options) (*Converter, string) {
	t.Helper()
	scratch := t.TempDir()
	opts.ScratchDir = scratch
	if opts.Speed == 0 {
		opts.Speed = 10
	}
	return NewConverter(ext, opts), scratch
}

func assertScratchEmpty(t *testing.T, scratch string) {
	t.Helper()
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "per-run temp dir should be removed")
}

func TestRunCompletesAndReportsProgress(t *testing.T) {
	ext := &fakeExtractor{sizes: framesOfSize(4, 16, 12)}
	conv, scratch := newTestConverter(t, ext, Options{ValidateDimensions: true})
	output := filepath.Join(t.TempDir(), "out.gif")

	state := NewState()
	rec := &recorder{}
	unsubscribe := state.Subscribe(rec.observe)
	defer unsubscribe()

	summary, err := conv.Run(context.Background(), Request{
		SourcePath:      "/clips/missing.mp4",
		DurationLimit:   time.Second,
		DestinationPath: output,
	}, state)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 25, 50, 75, 100}, rec.progress)
	assert.Contains(t, rec.statuses, StatusExtracting)
	assert.Contains(t, rec.statuses, StatusExtracting+" (4)")

	snap := state.Snapshot()
	assert.Equal(t, "Completed: "+output, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, PhaseIdle, snap.Phase)

	assert.Equal(t, OutcomeCompleted, summary.Outcome)
	assert.Equal(t, 4, summary.Frames)
	assert.Equal(t, 4, summary.Written)
	assert.Equal(t, output, summary.Output)
	assert.NotEmpty(t, summary.RunID)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, decoded.Image, 4)
	assert.Equal(t, 0, decoded.LoopCount)
	assert.Equal(t, []int{7, 7, 7, 7}, decoded.Delay)

	assertScratchEmpty(t, scratch)
}

func TestRunProgressSequenceForUnevenCount(t *testing.T) {
	ext := &fakeExtractor{sizes: framesOfSize(3, 8, 8)}
	conv, _ := newTestConverter(t, ext, Options{})
	state := NewState()
	rec := &recorder{}
	state.Subscribe(rec.observe)

	_, err := conv.Run(context.Background(), Request{
		SourcePath:      "/clips/a.mp4",
		DurationLimit:   time.Second,
		DestinationPath: filepath.Join(t.TempDir(), "out.gif"),
	}, state)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 33, 66, 100}, rec.progress)
}

func TestRunExtractorFailure(t *testing.T) {
	toolErr := services.Wrap(services.ErrExternalTool, "extract", "run ffmpeg", "ffmpeg failed: boom", errors.New("exit status 1"))
	ext := &fakeExtractor{err: toolErr}
	conv, scratch := newTestConverter(t, ext, Options{})
	output := filepath.Join(t.TempDir(), "out.gif")
	state := NewState()

	summary, err := conv.Run(context.Background(), Request{SourcePath: "/clips/a.mp4", DurationLimit: time.Second, DestinationPath: output}, state)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalTool)
	assert.Equal(t, OutcomeFailed, summary.Outcome)

	snap := state.Snapshot()
	assert.Equal(t, "Error: "+err.Error(), snap.Status)
	assert.Equal(t, 0, snap.Progress, "progress is not forced to 100 on failure")
	assert.NoFileExists(t, output, "encoder must not run")
	assertScratchEmpty(t, scratch)
}

func TestRunNoFramesFound(t *testing.T) {
	ext := &fakeExtractor{}
	conv, scratch := newTestConverter(t, ext, Options{})
	state := NewState()

	_, err := conv.Run(context.Background(), Request{SourcePath: "/clips/a.mp4", DurationLimit: time.Second, DestinationPath: filepath.Join(t.TempDir(), "out.gif")}, state)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrEmptyResult)
	assert.Contains(t, state.Status(), "No frames found")
	assert.NotEqual(t, 100, state.Progress())
	assert.NoDirExists(t, ext.lastDir)
	assertScratchEmpty(t, scratch)
}

func TestRunCancellationAfterFrame(t *testing.T) {
	ext := &fakeExtractor{sizes: framesOfSize(5, 10, 10)}
	conv, scratch := newTestConverter(t, ext, Options{})
	output := filepath.Join(t.TempDir(), "out.gif")
	state := NewState()

	// Cancel once the second frame has been written (40%).
	state.Subscribe(func(s Snapshot) {
		if s.Progress == 40 && !s.Cancelled {
			state.RequestCancellation()
		}
	})

	summary, err := conv.Run(context.Background(), Request{SourcePath: "/clips/a.mp4", DurationLimit: time.Second, DestinationPath: output}, state)
	require.NoError(t, err, "cancellation is not an error")

	snap := state.Snapshot()
	assert.Equal(t, StatusCancelled, snap.Status)
	assert.Equal(t, 40, snap.Progress, "progress keeps its pre-cancel value")
	assert.True(t, snap.Cancelled)
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, OutcomeCancelled, summary.Outcome)
	assert.Equal(t, 2, summary.Written)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	require.NoError(t, err, "partial output stays readable")
	assert.Len(t, decoded.Image, 2)
	assertScratchEmpty(t, scratch)
}

func TestRunDimensionMismatch(t *testing.T) {
	ext := &fakeExtractor{sizes: []image.Point{{X: 10, Y: 10}, {X: 12, Y: 10}}}

	conv, _ := newTestConverter(t, ext, Options{ValidateDimensions: true})
	state := NewState()
	_, err := conv.Run(context.Background(), Request{SourcePath: "/a.mp4", DurationLimit: time.Second, DestinationPath: filepath.Join(t.TempDir(), "a.gif")}, state)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrImageDecode)

	lenient, _ := newTestConverter(t, ext, Options{ValidateDimensions: false})
	_, err = lenient.Run(context.Background(), Request{SourcePath: "/a.mp4", DurationLimit: time.Second, DestinationPath: filepath.Join(t.TempDir(), "b.gif")}, NewState())
	require.NoError(t, err)
}

func TestRunProbeFailureOnlyWarns(t *testing.T) {
	probed := false
	ext := &fakeExtractor{sizes: framesOfSize(1, 4, 4)}
	conv, _ := newTestConverter(t, ext, Options{Probe: func(context.Context, string) (ffprobe.Result, error) {
		probed = true
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", "ffprobe missing", nil)
	}})

	_, err := conv.Run(context.Background(), Request{SourcePath: "/a.mp4", DurationLimit: time.Second, DestinationPath: filepath.Join(t.TempDir(), "a.gif")}, NewState())
	require.NoError(t, err)
	assert.True(t, probed)
}

func TestRunUsesRunIDFromContext(t *testing.T) {
	ext := &fakeExtractor{sizes: framesOfSize(1, 4, 4)}
	conv, _ := newTestConverter(t, ext, Options{})
	ctx := services.WithRunID(context.Background(), "run-42")

	summary, err := conv.Run(ctx, Request{SourcePath: "/a.mp4", DurationLimit: time.Second, DestinationPath: filepath.Join(t.TempDir(), "a.gif")}, NewState())
	require.NoError(t, err)
	assert.Equal(t, "run-42", summary.RunID)
}

func TestRunWritesNextToRegularSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(source, []byte("video"), 0o644))

	ext := &fakeExtractor{sizes: framesOfSize(1, 4, 4)}
	conv, _ := newTestConverter(t, ext, Options{})
	summary, err := conv.Run(context.Background(), Request{SourcePath: source, DurationLimit: time.Second, DestinationPath: "ignored.gif"}, NewState())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip.gif"), summary.Output)
	assert.FileExists(t, filepath.Join(dir, "clip.gif"))
	assert.NoFileExists(t, "ignored.gif")
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "x", "y"), 0o755))
	source := filepath.Join(dir, "x", "y", "clip.mp4")
	require.NoError(t, os.WriteFile(source, []byte("v"), 0o644))

	assert.Equal(t, filepath.Join(dir, "x", "y", "clip.gif"), ResolveOutputPath(source, "output.gif"))

	noExt := filepath.Join(dir, "raw")
	require.NoError(t, os.WriteFile(noExt, []byte("v"), 0o644))
	assert.Equal(t, noExt+".gif", ResolveOutputPath(noExt, "output.gif"))

	hidden := filepath.Join(dir, ".clip")
	require.NoError(t, os.WriteFile(hidden, []byte("v"), 0o644))
	assert.Equal(t, hidden+".gif", ResolveOutputPath(hidden, "output.gif"), "a leading dot is not an extension")

	hiddenExt := filepath.Join(dir, ".clip.mp4")
	require.NoError(t, os.WriteFile(hiddenExt, []byte("v"), 0o644))
	assert.Equal(t, hidden+".gif", ResolveOutputPath(hiddenExt, "output.gif"))

	assert.Equal(t, "output.gif", ResolveOutputPath(filepath.Join(dir, "missing.mp4"), "output.gif"))
	assert.Equal(t, "output.gif", ResolveOutputPath(dir, "output.gif"), "directories keep the caller's path")
}
