package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"truinconv/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "truinconv")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.OutputDir != "" {
		t.Fatalf("expected empty default output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Image.JPEGQuality != 95 {
		t.Fatalf("unexpected jpeg quality: %d", cfg.Image.JPEGQuality)
	}
	if cfg.Video.Engine != config.VideoEngineFFmpeg {
		t.Fatalf("unexpected video engine: %q", cfg.Video.Engine)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "custom.toml")
	payload := struct {
		Paths    config.Paths    `toml:"paths"`
		Video    config.Video    `toml:"video"`
		Document config.Document `toml:"document"`
		Logging  config.Logging  `toml:"logging"`
	}{
		Paths:    config.Paths{StateDir: "~/state", OutputDir: "~/converted"},
		Video:    config.Video{Engine: " Drapto "},
		Document: config.Document{SofficeBinary: "libreoffice", TimeoutSeconds: 0},
		Logging:  config.Logging{Format: "JSON", Level: "Debug"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %s to be used, got %s (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "converted") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Video.Engine != config.VideoEngineDrapto {
		t.Fatalf("expected drapto engine, got %q", cfg.Video.Engine)
	}
	if cfg.Document.SofficeBinary != "libreoffice" {
		t.Fatalf("unexpected soffice binary: %q", cfg.Document.SofficeBinary)
	}
	if cfg.Document.TimeoutSeconds != 300 {
		t.Fatalf("expected timeout default to apply, got %d", cfg.Document.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadEnvironmentBinaryOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRUINCONV_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("TRUINCONV_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Media.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Media.FFmpegBinary)
	}
	if cfg.Media.FFprobeBinary != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.Media.FFprobeBinary)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "jpeg quality",
			mutate:  func(c *config.Config) { c.Image.JPEGQuality = 0 },
			wantErr: "image.jpeg_quality",
		},
		{
			name:    "video engine",
			mutate:  func(c *config.Config) { c.Video.Engine = "handbrake" },
			wantErr: "video.engine",
		},
		{
			name:    "log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "trace" },
			wantErr: "logging.level",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Image.JPEGQuality != 95 {
		t.Fatalf("unexpected sample jpeg quality: %d", cfg.Image.JPEGQuality)
	}
}

func TestEnsureDirectoriesCreatesStateDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}
