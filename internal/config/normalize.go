package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeExtraction()
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	// An empty temp_dir means the OS default scratch location.
	if strings.TrimSpace(c.Paths.TempDir) != "" {
		if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
			return fmt.Errorf("paths.temp_dir: %w", err)
		}
	} else {
		c.Paths.TempDir = ""
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if value, ok := os.LookupEnv("CLIPGIF_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.Binary = value
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if value, ok := os.LookupEnv("CLIPGIF_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFprobeBinary = value
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	if c.FFmpeg.TimeoutSeconds < 0 {
		c.FFmpeg.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.FPS == 0 {
		c.Extraction.FPS = defaultFPS
	}
	c.Extraction.FrameFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Extraction.FrameFormat), "."))
	if c.Extraction.FrameFormat == "" {
		c.Extraction.FrameFormat = defaultFrameFormat
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.DefaultDuration = strings.TrimSpace(c.Conversion.DefaultDuration)
	if c.Conversion.DefaultDuration == "" {
		c.Conversion.DefaultDuration = defaultDuration
	}
	c.Conversion.DefaultOutput = strings.TrimSpace(c.Conversion.DefaultOutput)
	if c.Conversion.DefaultOutput == "" {
		c.Conversion.DefaultOutput = defaultOutput
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("CLIPGIF_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
