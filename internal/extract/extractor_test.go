package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipgif/internal/services"
)

type fakeExecutor struct {
	mu     sync.Mutex
	binary string
	args   []string
	stderr []byte
	err    error
	block  bool
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.mu.Lock()
	f.binary = binary
	f.args = append([]string(nil), args...)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, errors.New("signal: killed")
	}
	return f.stderr, f.err
}

func TestFormatLimit(t *testing.T) {
	cases := map[time.Duration]string{
		0:                       "00:00:00.000",
		5 * time.Second:         "00:00:05.000",
		1500 * time.Millisecond: "00:00:01.500",
		time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond: "01:02:03.045",
		-time.Second: "00:00:00.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatLimit(in), "FormatLimit(%v)", in)
	}
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("/clips/a.mp4", 5*time.Second, "/tmp/run", 15, ".PNG")
	assert.Equal(t, []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "/clips/a.mp4",
		"-t", "00:00:05.000",
		"-vf", "fps=15",
		"/tmp/run/frame_%05d.png",
		"-y",
	}, args)
}

func TestExtractPassesArguments(t *testing.T) {
	exec := &fakeExecutor{}
	extractor, err := New("/usr/bin/ffmpeg", WithExecutor(exec), WithFPS(10), WithFrameFormat("webp"))
	require.NoError(t, err)

	require.NoError(t, extractor.Extract(context.Background(), "/clips/a.mp4", 2*time.Second, "/tmp/run", nil))
	assert.Equal(t, "/usr/bin/ffmpeg", exec.binary)
	assert.Contains(t, exec.args, "fps=10")
	assert.Contains(t, exec.args, "/tmp/run/frame_%05d.webp")
	assert.Equal(t, 10, extractor.FPS())
	assert.Equal(t, "webp", extractor.FrameFormat())
}

func TestExtractNonZeroExitIsExternalToolError(t *testing.T) {
	exec := &fakeExecutor{
		stderr: []byte("  /clips/missing.mp4: No such file or directory\n"),
		err:    errors.New("exit status 1"),
	}
	extractor, err := New("ffmpeg", WithExecutor(exec))
	require.NoError(t, err)

	err = extractor.Extract(context.Background(), "/clips/missing.mp4", time.Second, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrExternalTool)
	assert.Contains(t, err.Error(), "ffmpeg failed: /clips/missing.mp4: No such file or directory")
	assert.Equal(t, "external_tool", services.Kind(err))
}

func TestExtractTimeout(t *testing.T) {
	exec := &fakeExecutor{block: true}
	extractor, err := New("ffmpeg", WithExecutor(exec), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	err = extractor.Extract(context.Background(), "/clips/a.mp4", time.Second, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTimeout)
	assert.Equal(t, "timeout", services.Kind(err))
}

func TestExtractParentCancellation(t *testing.T) {
	exec := &fakeExecutor{block: true}
	extractor, err := New("ffmpeg", WithExecutor(exec))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = extractor.Extract(ctx, "/clips/a.mp4", time.Second, t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, services.ErrTimeout)
}

func TestExtractValidatesInputs(t *testing.T) {
	extractor, err := New("ffmpeg", WithExecutor(&fakeExecutor{}))
	require.NoError(t, err)

	assert.ErrorIs(t, extractor.Extract(context.Background(), "", time.Second, "/tmp", nil), services.ErrConfiguration)
	assert.ErrorIs(t, extractor.Extract(context.Background(), "/a.mp4", time.Second, "", nil), services.ErrTemporaryStorage)

	_, err = New("  ")
	assert.Error(t, err)
}

// writeFFmpegStub creates a script that writes count frames next to the
// output pattern (the second to last argument).
func writeFFmpegStub(t *testing.T, count int) string {
	t.Helper()
	var body strings.Builder
	body.WriteString("#!/bin/sh\n")
	body.WriteString("prev=''\nlast=''\nfor a in \"$@\"; do prev=\"$last\"; last=\"$a\"; done\n")
	body.WriteString("dir=$(dirname \"$prev\")\n")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&body, "printf x > \"$dir/frame_%05d.png\"\n", i)
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(body.String()), 0o755))
	return path
}

func TestExtractWithRealProcess(t *testing.T) {
	stub := writeFFmpegStub(t, 3)
	dir := t.TempDir()
	extractor, err := New(stub, WithWatch(true))
	require.NoError(t, err)

	var mu sync.Mutex
	var counts []int
	err = extractor.Extract(context.Background(), "/clips/a.mp4", time.Second, dir, func(n int) {
		mu.Lock()
		counts = append(counts, n)
		mu.Unlock()
	})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(counts); i++ {
		assert.Greater(t, counts[i], counts[i-1], "watcher counts must increase")
	}
}

func TestExtractRealProcessFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n"), 0o755))
	extractor, err := New(path)
	require.NoError(t, err)

	err = extractor.Extract(context.Background(), "/clips/a.mp4", time.Second, t.TempDir(), nil)
	require.ErrorIs(t, err, services.ErrExternalTool)
	assert.Contains(t, err.Error(), "Invalid data found")
	assert.Contains(t, err.Error(), path)
}
