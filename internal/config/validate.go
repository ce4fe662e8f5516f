package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.FPS <= 0 || c.Extraction.FPS > maxFPS {
		return fmt.Errorf("extraction.fps must be between 1 and %d", maxFPS)
	}
	switch c.Extraction.FrameFormat {
	case "png", "webp":
	default:
		return fmt.Errorf("extraction.frame_format: unsupported value %q (use png or webp)", c.Extraction.FrameFormat)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.Speed < minEncoderSpeed || c.Encoder.Speed > maxEncoderSpeed {
		return fmt.Errorf("encoder.speed must be between %d and %d", minEncoderSpeed, maxEncoderSpeed)
	}
	return nil
}

func (c *Config) validateConversion() error {
	if _, err := ParseClipDuration(c.Conversion.DefaultDuration); err != nil {
		return fmt.Errorf("conversion.default_duration: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
