package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"truinconv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithVideoEngine overrides the video engine on the test config.
func WithVideoEngine(engine string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Video.Engine = engine
	}
}

// WithHistoryDisabled turns off history recording.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// (ffmpeg, ffprobe, soffice) are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "soffice"}
		}
		binDir := stubDir(b.t, b.baseDir)
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "exit 0\n")
		}
		prependPath(b.t, binDir)
	}
}

// WithStubScript installs a named stub whose body is the given shell
// script, prepends its directory to PATH, and points the matching config
// field at it when the name is a known tool.
func WithStubScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := stubDir(b.t, b.baseDir)
		target := filepath.Join(binDir, name)
		WriteScript(b.t, target, body)
		prependPath(b.t, binDir)
		switch name {
		case "ffmpeg":
			b.cfg.Media.FFmpegBinary = target
		case "ffprobe":
			b.cfg.Media.FFprobeBinary = target
		case "soffice":
			b.cfg.Document.SofficeBinary = target
		}
	}
}

// WriteScript writes an executable /bin/sh script.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

func stubDir(t testing.TB, base string) string {
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func prependPath(t testing.TB, dir string) {
	oldPath := os.Getenv("PATH")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath)
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
