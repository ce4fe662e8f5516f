package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"clipgif/internal/config"
	"clipgif/internal/deps"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	assert.True(t, result.Passed, result.Detail)
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Detail, "does not exist")
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	assert.False(t, CheckDirectoryAccess("test", f).Passed)
}

func withStatfs(t *testing.T, fn func(string, *unix.Statfs_t) error) {
	t.Helper()
	original := statfs
	statfs = fn
	t.Cleanup(func() { statfs = original })
}

func TestCheckFreeSpace(t *testing.T) {
	withStatfs(t, func(_ string, st *unix.Statfs_t) error {
		st.Bsize = 4096
		st.Bavail = 1024
		return nil
	})

	result := CheckFreeSpace("space", "/scratch", 1<<20)
	assert.True(t, result.Passed, "4 MiB free should satisfy 1 MiB: %s", result.Detail)

	result = CheckFreeSpace("space", "/scratch", 1<<30)
	assert.False(t, result.Passed, "4 MiB free should not satisfy 1 GiB")
	assert.Contains(t, result.Detail, "4.0 MiB free")
}

func TestCheckFreeSpaceStatError(t *testing.T) {
	withStatfs(t, func(string, *unix.Statfs_t) error { return errors.New("boom") })
	assert.False(t, CheckFreeSpace("space", "/scratch", 1).Passed)
}

func TestCheckBinary(t *testing.T) {
	ok := CheckBinary(deps.Status{Name: "FFmpeg", Available: true, Path: "/usr/bin/ffmpeg"})
	assert.True(t, ok.Passed)
	assert.Equal(t, "/usr/bin/ffmpeg", ok.Detail)

	missing := CheckBinary(deps.Status{Name: "FFprobe", Optional: true, Detail: "binary \"ffprobe\" not found"})
	assert.False(t, missing.Passed)
	assert.True(t, missing.Optional)

	assert.False(t, Failed([]Result{ok, missing}), "optional failure does not fail the run")
	assert.True(t, Failed([]Result{ok, {Name: "Scratch"}}), "required failure fails the run")
}

func TestRunAll_NilConfig(t *testing.T) {
	assert.Nil(t, RunAll(context.Background(), nil))
}

func TestRunAll_WithStubBinaries(t *testing.T) {
	withStatfs(t, func(_ string, st *unix.Statfs_t) error {
		st.Bsize = 4096
		st.Bavail = 1 << 20
		return nil
	})
	binDir := t.TempDir()
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		require.NoError(t, os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Paths.TempDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()

	results := RunAll(context.Background(), &cfg)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Passed, "check %q failed: %s", r.Name, r.Detail)
	}
	assert.False(t, Failed(results))
}
