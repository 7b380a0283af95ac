package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"truinconv/internal/config"
	"truinconv/internal/formats"
	"truinconv/internal/services"
	"truinconv/internal/transcode"
)

type call struct {
	kind, input, output, target string
}

type recorder struct {
	calls []call
	err   error
}

func (r *recorder) Convert(_ context.Context, input, output, target string) error {
	r.calls = append(r.calls, call{"file", input, output, target})
	return r.err
}

func (r *recorder) ConvertAudio(_ context.Context, input, output, target string, progress transcode.ProgressFunc) error {
	r.calls = append(r.calls, call{"audio", input, output, target})
	if progress != nil {
		progress(50)
	}
	return r.err
}

func (r *recorder) ConvertVideo(_ context.Context, input, output, target string, _ transcode.ProgressFunc) error {
	r.calls = append(r.calls, call{"video", input, output, target})
	return r.err
}

type engineRecorder struct {
	calls []string
}

func (e *engineRecorder) Convert(_ context.Context, input, output string, progress func(float64)) error {
	e.calls = append(e.calls, input+"->"+output)
	progress(100)
	return nil
}

func TestConvertDispatchesByCategory(t *testing.T) {
	image, media, doc := &recorder{}, &recorder{}, &recorder{}
	r := New(Converters{Image: image, Media: media, Document: doc}, nil)
	ctx := context.Background()

	cases := []struct {
		category formats.Category
		target   string
		rec      *recorder
		kind     string
	}{
		{formats.Image, "PNG", image, "file"},
		{formats.Audio, "MP3", media, "audio"},
		{formats.Video, "MP4", media, "video"},
		{formats.Document, "PDF", doc, "file"},
		{formats.Media, "flac", media, "audio"},
		{formats.Media, "WEBM", media, "video"},
	}
	for _, tc := range cases {
		before := len(tc.rec.calls)
		if err := r.Convert(ctx, Request{Input: "in", Output: "out", TargetFormat: tc.target, Category: tc.category}); err != nil {
			t.Fatalf("Convert(%s, %s): %v", tc.category, tc.target, err)
		}
		if len(tc.rec.calls) != before+1 {
			t.Fatalf("expected %s backend to be called for %s", tc.kind, tc.target)
		}
		if got := tc.rec.calls[len(tc.rec.calls)-1]; got.kind != tc.kind || got.target != tc.target {
			t.Fatalf("unexpected call %+v for %s/%s", got, tc.category, tc.target)
		}
	}
}

func TestConvertReportsProgress(t *testing.T) {
	media, image := &recorder{}, &recorder{}
	r := New(Converters{Image: image, Media: media}, nil)
	var seen []float64
	progress := func(p float64) { seen = append(seen, p) }

	if err := r.Convert(context.Background(), Request{Input: "a.wav", Output: "a.mp3", TargetFormat: "MP3", Category: formats.Audio, Progress: progress}); err != nil {
		t.Fatal(err)
	}
	if err := r.Convert(context.Background(), Request{Input: "a.png", Output: "a.gif", TargetFormat: "GIF", Category: formats.Image, Progress: progress}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 50 || seen[1] != 100 {
		t.Fatalf("unexpected progress %v", seen)
	}
}

func TestConvertValidation(t *testing.T) {
	r := New(Converters{Image: &recorder{}}, nil)
	cases := []struct {
		req  Request
		want string
	}{
		{Request{Output: "o", TargetFormat: "PNG", Category: formats.Image}, "input file cannot be empty"},
		{Request{Input: "i", TargetFormat: "PNG", Category: formats.Image}, "output file cannot be empty"},
		{Request{Input: "i", Output: "o", TargetFormat: "  ", Category: formats.Image}, "target format cannot be empty"},
		{Request{Input: "i", Output: "o", TargetFormat: "PNG"}, "conversion category cannot be empty"},
	}
	for _, tc := range cases {
		err := r.Convert(context.Background(), tc.req)
		if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("expected %q validation error, got %v", tc.want, err)
		}
	}
}

func TestConvertUnknownCategory(t *testing.T) {
	r := New(Converters{}, nil)
	err := r.Convert(context.Background(), Request{Input: "i", Output: "o", TargetFormat: "X", Category: "spreadsheet"})
	if !errors.Is(err, services.ErrUnsupported) || !strings.Contains(err.Error(), "unsupported conversion category: spreadsheet") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestConvertMissingBackend(t *testing.T) {
	r := New(Converters{}, nil)
	err := r.Convert(context.Background(), Request{Input: "i", Output: "o", TargetFormat: "PDF", Category: formats.Document})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestMKVUsesDraptoWhenConfigured(t *testing.T) {
	media := &recorder{}
	engine := &engineRecorder{}
	r := New(Converters{Media: media, Drapto: engine}, nil)

	if err := r.Convert(context.Background(), Request{Input: "a.mp4", Output: "a.mkv", TargetFormat: "mkv", Category: formats.Video}); err != nil {
		t.Fatal(err)
	}
	if err := r.Convert(context.Background(), Request{Input: "a.mkv", Output: "a.mov", TargetFormat: "MOV", Category: formats.Video}); err != nil {
		t.Fatal(err)
	}
	if len(engine.calls) != 1 || engine.calls[0] != "a.mp4->a.mkv" {
		t.Fatalf("expected drapto for MKV only, got %v", engine.calls)
	}
	if len(media.calls) != 1 || media.calls[0].target != "MOV" {
		t.Fatalf("expected ffmpeg for MOV, got %+v", media.calls)
	}
}

func TestResolve(t *testing.T) {
	if got, _ := Resolve(formats.Media, "ogg"); got != formats.Audio {
		t.Fatalf("expected audio, got %s", got)
	}
	if got, _ := Resolve(formats.Media, "AVI"); got != formats.Video {
		t.Fatalf("expected video, got %s", got)
	}
	if got, _ := Resolve(formats.Image, "PNG"); got != formats.Image {
		t.Fatalf("expected passthrough, got %s", got)
	}
	if _, err := Resolve(formats.Media, "PNG"); !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewFromConfigWiresDraptoOnlyWhenSelected(t *testing.T) {
	cfg := config.Default()
	if r := NewFromConfig(&cfg, nil); r.converters.Drapto != nil {
		t.Fatal("ffmpeg engine should not wire drapto")
	}
	cfg.Video.Engine = config.VideoEngineDrapto
	r := NewFromConfig(&cfg, nil)
	if r.converters.Drapto == nil || r.converters.Image == nil || r.converters.Media == nil || r.converters.Document == nil {
		t.Fatalf("expected every backend wired, got %+v", r.converters)
	}
}
