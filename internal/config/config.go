package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	TempDir  string `toml:"temp_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// FFmpeg contains settings for the external decoding tools.
type FFmpeg struct {
	Binary         string `toml:"binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ProbeSource    bool   `toml:"probe_source"`
}

// Extraction contains frame extraction settings.
type Extraction struct {
	FPS         int    `toml:"fps"`
	FrameFormat string `toml:"frame_format"`
	WatchFrames bool   `toml:"watch_frames"`
}

// Encoder contains animation encoder settings.
type Encoder struct {
	// Speed trades palette quality for speed, 1 (slowest, best) to 30 (fastest).
	Speed int `toml:"speed"`
	// ValidateDimensions fails the run when a frame differs in size from the first frame.
	ValidateDimensions bool `toml:"validate_dimensions"`
}

// Conversion contains defaults applied when the CLI omits a value.
type Conversion struct {
	DefaultDuration string `toml:"default_duration"`
	DefaultOutput   string `toml:"default_output"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       bool   `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for clipgif.
//
// Configuration sections by subsystem:
//   - Paths: scratch, log, and lock directories
//   - FFmpeg: external tool binaries and timeout
//   - Extraction: sampling rate and intermediate frame format
//   - Encoder: palette speed and frame size validation
//   - Conversion: CLI defaults
//   - Logging: log format, level, and rotation
type Config struct {
	Paths      Paths      `toml:"paths"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
	Extraction Extraction `toml:"extraction"`
	Encoder    Encoder    `toml:"encoder"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipgif/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is loaded
// first so its values participate in environment fallbacks.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipgif.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories clipgif writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegTimeout returns the configured extraction timeout, or zero when disabled.
func (c *Config) FFmpegTimeout() time.Duration {
	if c.FFmpeg.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.FFmpeg.TimeoutSeconds) * time.Second
}

// ScratchDir returns the parent directory for per-run temporary directories.
func (c *Config) ScratchDir() string {
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return os.TempDir()
	}
	return c.Paths.TempDir
}

// LockPath returns the file used to serialize conversions across processes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "clipgif.lock")
}

// LogFilePath returns the rotating log file path, or "" when file logging is off.
func (c *Config) LogFilePath() string {
	if !c.Logging.File || strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "clipgif.log")
}

// DefaultDuration parses Conversion.DefaultDuration. Validation guarantees it parses.
func (c *Config) DefaultDuration() time.Duration {
	d, err := ParseClipDuration(c.Conversion.DefaultDuration)
	if err != nil {
		return defaultClipDuration
	}
	return d
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "clipgif")
	}
	return "~/.local/state/clipgif"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
