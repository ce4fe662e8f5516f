package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type cliTestEnv struct {
	root       string
	configPath string
	ffmpegPath string
	framePath  string
}

// setupCLITestEnv writes a config pointing every directory into a temp root
// and ffmpeg at a stub script that copies a fixed PNG three times.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("CLIPGIF_FFMPEG", "")
	t.Setenv("CLIPGIF_FFPROBE", "")
	t.Setenv("CLIPGIF_LOG_LEVEL", "")

	env := &cliTestEnv{
		root:       root,
		configPath: filepath.Join(root, "config.toml"),
		ffmpegPath: filepath.Join(root, "bin", "ffmpeg"),
		framePath:  filepath.Join(root, "frame.png"),
	}
	writeTestFrame(t, env.framePath, 8, 6)
	writeStubFFmpeg(t, env.ffmpegPath, env.framePath, 3)
	writeTestConfig(t, env.configPath, env.ffmpegPath, root)
	return env
}

func writeTestFrame(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// writeStubFFmpeg installs a script that treats the argument before -y as the
// output pattern and drops count copies of frame next to it.
func writeStubFFmpeg(t *testing.T, path, frame string, count int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	script := fmt.Sprintf(`#!/bin/sh
pattern=""
prev=""
for arg in "$@"; do
  if [ "$arg" = "-y" ]; then pattern="$prev"; fi
  prev="$arg"
done
dir=$(dirname "$pattern")
i=1
while [ $i -le %d ]; do
  cp %q "$dir/$(printf 'frame_%%05d.png' $i)"
  i=$((i + 1))
done
`, count, frame)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

func writeTestConfig(t *testing.T, path, ffmpeg, root string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
temp_dir = %q
log_dir = %q
state_dir = %q

[ffmpeg]
binary = %q
probe_source = false

[extraction]
fps = 10
frame_format = "png"
watch_frames = false

[logging]
level = "error"
`, filepath.Join(root, "tmp"), filepath.Join(root, "logs"), filepath.Join(root, "state"), ffmpeg)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
