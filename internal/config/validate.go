package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.JPEGQuality < 1 || c.Image.JPEGQuality > 100 {
		return errors.New("image.jpeg_quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateVideo() error {
	switch c.Video.Engine {
	case VideoEngineFFmpeg, VideoEngineDrapto:
		return nil
	default:
		return fmt.Errorf("video.engine: unsupported value %q (want %q or %q)", c.Video.Engine, VideoEngineFFmpeg, VideoEngineDrapto)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
