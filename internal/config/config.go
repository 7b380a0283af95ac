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

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir  string `toml:"state_dir"`
	OutputDir string `toml:"output_dir"`
}

// Image contains settings for the image converter.
type Image struct {
	JPEGQuality int `toml:"jpeg_quality"`
}

// Media contains the ffmpeg toolchain used for audio and video.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Video selects the engine used for video conversions.
type Video struct {
	// Engine is "ffmpeg" (default) or "drapto". Drapto only handles MKV
	// targets; other containers always go through ffmpeg.
	Engine string `toml:"engine"`
}

// Document contains LibreOffice settings for DOCX/PDF conversion.
type Document struct {
	SofficeBinary  string `toml:"soffice_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Batch contains defaults applied to every conversion batch.
type Batch struct {
	Overwrite bool `toml:"overwrite"`
}

// History contains configuration for the conversion history database.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for truinconv.
//
// Configuration sections by subsystem:
//   - Paths: state directory (logs, history, locks) and default output directory
//   - Image: encoder quality for lossy image targets
//   - Media: ffmpeg and ffprobe binaries
//   - Video: video engine selection
//   - Document: LibreOffice binary and timeout
//   - Batch: overwrite policy
//   - History: SQLite conversion history
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Image    Image    `toml:"image"`
	Media    Media    `toml:"media"`
	Video    Video    `toml:"video"`
	Document Document `toml:"document"`
	Batch    Batch    `toml:"batch"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/truinconv/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
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

	projectPath, err := filepath.Abs("truinconv.toml")
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

// EnsureDirectories creates the state directory. The output directory is
// created per batch, not here.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "truinconv.log")
}

// DocumentTimeout returns the per-file LibreOffice timeout.
func (c *Config) DocumentTimeout() time.Duration {
	return time.Duration(c.Document.TimeoutSeconds) * time.Second
}

// HistoryRetention returns how long batches are kept before pruning.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
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
