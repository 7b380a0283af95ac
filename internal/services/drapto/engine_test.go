package drapto

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	draptolib "github.com/five82/drapto"

	"truinconv/internal/services"
)

type fakeClient struct {
	err     error
	updates []ProgressUpdate
}

func (f *fakeClient) Encode(_ context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error) {
	for _, u := range f.updates {
		progress(u)
	}
	if f.err != nil {
		return "", f.err
	}
	out := OutputPath(inputPath, outputDir)
	if err := os.WriteFile(out, []byte("av1"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func TestEngineMovesOutputIntoPlace(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{updates: []ProgressUpdate{{Percent: 10}, {Percent: 60}, {Percent: 100}}}
	output := filepath.Join(dir, "movie (1).mkv")

	var seen []float64
	if err := NewEngine(client).Convert(context.Background(), "/src/movie.mp4", output, func(p float64) {
		seen = append(seen, p)
	}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil || string(data) != "av1" {
		t.Fatalf("expected moved output, got %q (%v)", data, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected work dir cleanup, found %d entries", len(entries))
	}
	if len(seen) != 3 || seen[2] != 100 {
		t.Fatalf("unexpected progress %v", seen)
	}
}

func TestEngineWrapsEncodeFailure(t *testing.T) {
	dir := t.TempDir()
	client := &fakeClient{err: errors.New("svt-av1 crashed")}
	err := NewEngine(client).Convert(context.Background(), "/src/movie.mp4", filepath.Join(dir, "movie.mkv"), nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected cleanup after failure, found %d entries", len(entries))
	}
}

func TestEngineReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &fakeClient{err: errors.New("interrupted")}
	err := NewEngine(client).Convert(ctx, "/src/movie.mp4", filepath.Join(t.TempDir(), "movie.mkv"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/a/b/clip.final.mov", " /out "); got != "/out/clip.final.mkv" {
		t.Fatalf("unexpected output path %q", got)
	}
}

func TestReporterForwardsProgress(t *testing.T) {
	var updates []ProgressUpdate
	rep := newProgressReporter(func(u ProgressUpdate) { updates = append(updates, u) }, nil)

	eta := 90 * time.Second
	rep.StageProgress(draptolib.StageProgress{Percent: 5, Stage: "analysis", Message: "detecting crop", ETA: &eta})
	rep.EncodingProgress(draptolib.ProgressSnapshot{Percent: 42, ETA: time.Minute})
	rep.Warning("ignored by callback")
	rep.EncodingComplete(draptolib.EncodingOutcome{OutputFile: "movie.mkv"})

	if len(updates) != 3 {
		t.Fatalf("expected 3 forwarded updates, got %d", len(updates))
	}
	if updates[0].Stage != "analysis" || updates[0].ETA != eta {
		t.Fatalf("unexpected stage update %+v", updates[0])
	}
	if updates[1].Percent != 42 || updates[1].Stage != "encoding" {
		t.Fatalf("unexpected encoding update %+v", updates[1])
	}
	if updates[2].Percent != 100 {
		t.Fatalf("expected completion at 100%%, got %+v", updates[2])
	}
}

func TestLibraryValidatesArguments(t *testing.T) {
	lib := NewLibrary(nil)
	if _, err := lib.Encode(context.Background(), "", "/tmp", nil); err == nil {
		t.Fatal("expected error when input path is empty")
	}
	if _, err := lib.Encode(context.Background(), "/media/movie.mkv", " ", nil); err == nil {
		t.Fatal("expected error when output directory is empty")
	}
}
