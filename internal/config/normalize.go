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
	c.normalizeMedia()
	c.normalizeVideo()
	c.normalizeDocument()
	c.normalizeHistory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if value, ok := os.LookupEnv("TRUINCONV_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFmpegBinary = strings.TrimSpace(value)
	}
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if value, ok := os.LookupEnv("TRUINCONV_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Media.FFprobeBinary = strings.TrimSpace(value)
	}
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeVideo() {
	c.Video.Engine = strings.ToLower(strings.TrimSpace(c.Video.Engine))
	if c.Video.Engine == "" {
		c.Video.Engine = defaultVideoEngine
	}
}

func (c *Config) normalizeDocument() {
	c.Document.SofficeBinary = strings.TrimSpace(c.Document.SofficeBinary)
	if c.Document.SofficeBinary == "" {
		c.Document.SofficeBinary = defaultSofficeBinary
	}
	if c.Document.TimeoutSeconds <= 0 {
		c.Document.TimeoutSeconds = defaultDocumentTimeout
	}
}

func (c *Config) normalizeHistory() {
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
