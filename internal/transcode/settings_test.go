package transcode

import (
	"errors"
	"strings"
	"testing"

	"truinconv/internal/media/ffprobe"
	"truinconv/internal/services"
)

func audioProbe(bitRate, sampleRate string, channels int) ffprobe.Result {
	return ffprobe.Result{Streams: []ffprobe.Stream{{
		CodecType:  "audio",
		BitRate:    bitRate,
		SampleRate: sampleRate,
		Channels:   channels,
	}}}
}

func TestAudioSettingsFor(t *testing.T) {
	cases := []struct {
		name   string
		probe  ffprobe.Result
		target string
		want   AudioSettings
	}{
		{
			name:   "keeps high source bitrate",
			probe:  audioProbe("320000", "44100", 2),
			target: "MP3",
			want:   AudioSettings{Codec: "libmp3lame", BitRate: 320000, SampleRate: 44100, Channels: 2, Format: "mp3"},
		},
		{
			name:   "exactly minimum is kept",
			probe:  audioProbe("128000", "22050", 1),
			target: "ogg",
			want:   AudioSettings{Codec: "libvorbis", BitRate: 128000, SampleRate: 22050, Channels: 1, Format: "ogg"},
		},
		{
			name:   "low bitrate falls back",
			probe:  audioProbe("96000", "48000", 6),
			target: " aac ",
			want:   AudioSettings{Codec: "aac", BitRate: 192000, SampleRate: 48000, Channels: 6, Format: "aac"},
		},
		{
			name:   "missing stream values fall back",
			probe:  audioProbe("", "", 0),
			target: "FLAC",
			want:   AudioSettings{Codec: "flac", BitRate: 192000, SampleRate: 48000, Channels: 2, Format: "flac"},
		},
		{
			name:   "no audio stream",
			probe:  ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}},
			target: "wav",
			want:   AudioSettings{Codec: "pcm_s16le", BitRate: 192000, SampleRate: 48000, Channels: 2, Format: "wav"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AudioSettingsFor(tc.probe, tc.target)
			if err != nil {
				t.Fatalf("AudioSettingsFor: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestAudioSettingsRejectsUnknownTarget(t *testing.T) {
	_, err := AudioSettingsFor(ffprobe.Result{}, "wma")
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "unsupported audio format: wma") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func videoProbe(bitRate, rate string, withAudio bool) ffprobe.Result {
	streams := []ffprobe.Stream{{
		CodecType:    "video",
		CodecName:    "h264",
		Width:        1280,
		Height:       720,
		BitRate:      bitRate,
		AvgFrameRate: rate,
	}}
	if withAudio {
		streams = append(streams, ffprobe.Stream{CodecType: "audio", BitRate: "256000", SampleRate: "44100", Channels: 2})
	}
	return ffprobe.Result{Streams: streams}
}

func TestVideoSettingsFor(t *testing.T) {
	cases := []struct {
		name      string
		probe     ffprobe.Result
		target    string
		codec     string
		bitRate   int64
		frameRate int
	}{
		{name: "within range", probe: videoProbe("5000000", "24000/1001", false), target: "MP4", codec: "libx264", bitRate: 5000000, frameRate: 24},
		{name: "below minimum", probe: videoProbe("800000", "25/1", false), target: "MKV", codec: "libx264", bitRate: MinVideoBitRate, frameRate: 25},
		{name: "above maximum", probe: videoProbe("45000000", "60/1", false), target: "mov", codec: "libx264", bitRate: MaxVideoBitRate, frameRate: 60},
		{name: "unknown bitrate", probe: videoProbe("", "30/1", false), target: "AVI", codec: "libx264", bitRate: FallbackVideoBitRate, frameRate: 30},
		{name: "high frame rate falls back", probe: videoProbe("4000000", "120/1", false), target: "MP4", codec: "libx264", bitRate: 4000000, frameRate: FallbackFrameRate},
		{name: "unknown frame rate falls back", probe: videoProbe("4000000", "0/0", false), target: "MP4", codec: "libx264", bitRate: 4000000, frameRate: FallbackFrameRate},
		{name: "webm clamps high", probe: videoProbe("12000000", "30/1", false), target: "WEBM", codec: "libvpx", bitRate: MaxWebMBitRate, frameRate: 30},
		{name: "webm clamps low", probe: videoProbe("500000", "30/1", false), target: "webm", codec: "libvpx", bitRate: MinWebMBitRate, frameRate: 30},
		{name: "webm keeps in-range", probe: videoProbe("1200000", "30/1", false), target: "WEBM", codec: "libvpx", bitRate: 1200000, frameRate: 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := VideoSettingsFor(tc.probe, tc.target)
			if err != nil {
				t.Fatalf("VideoSettingsFor: %v", err)
			}
			if got.Codec != tc.codec || got.BitRate != tc.bitRate || got.FrameRate != tc.frameRate {
				t.Fatalf("got codec=%s bitrate=%d fps=%d, want %s %d %d", got.Codec, got.BitRate, got.FrameRate, tc.codec, tc.bitRate, tc.frameRate)
			}
			if got.Width != 1280 || got.Height != 720 {
				t.Fatalf("expected source size to be copied, got %dx%d", got.Width, got.Height)
			}
			if got.Audio != nil {
				t.Fatal("expected no audio settings for silent source")
			}
		})
	}
}

func TestVideoSettingsUsesContainerBitRate(t *testing.T) {
	probe := videoProbe("", "25/1", false)
	probe.Format.BitRate = "6000000"
	got, err := VideoSettingsFor(probe, "MP4")
	if err != nil {
		t.Fatal(err)
	}
	if got.BitRate != 6000000 {
		t.Fatalf("expected container bitrate, got %d", got.BitRate)
	}
}

func TestVideoSettingsWithoutVideoStream(t *testing.T) {
	got, err := VideoSettingsFor(audioProbe("64000", "44100", 1), "MKV")
	if err != nil {
		t.Fatal(err)
	}
	if got.BitRate != FallbackVideoBitRate || got.FrameRate != FallbackFrameRate {
		t.Fatalf("unexpected fallback %+v", got)
	}
	if got.Width != 0 || got.Height != 0 {
		t.Fatalf("expected unknown size, got %dx%d", got.Width, got.Height)
	}
	if got.Audio == nil || got.Audio.Codec != "aac" || got.Audio.BitRate != FallbackAudioBitRate || got.Audio.Channels != 1 {
		t.Fatalf("unexpected audio settings %+v", got.Audio)
	}
}

func TestVideoSettingsAudioTrack(t *testing.T) {
	got, err := VideoSettingsFor(videoProbe("5000000", "30/1", true), "MP4")
	if err != nil {
		t.Fatal(err)
	}
	want := AudioSettings{Codec: "aac", BitRate: 256000, SampleRate: 44100, Channels: 2, Format: "mp4"}
	if got.Audio == nil || *got.Audio != want {
		t.Fatalf("got %+v, want %+v", got.Audio, want)
	}

	webm, err := VideoSettingsFor(videoProbe("5000000", "30/1", true), "WEBM")
	if err != nil {
		t.Fatal(err)
	}
	if webm.Audio == nil || webm.Audio.Codec != "libvorbis" {
		t.Fatalf("expected vorbis audio in webm, got %+v", webm.Audio)
	}
}

func TestVideoSettingsRejectsUnknownTarget(t *testing.T) {
	_, err := VideoSettingsFor(ffprobe.Result{}, "FLV")
	if !errors.Is(err, services.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported video format: FLV") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestFrameRateRounding(t *testing.T) {
	cases := map[float64]int{29.97: 30, 23.976: 24, 59.94: 60, 60: 60, 60.5: 30, 0: 30, -1: 30, 0.2: 1}
	for in, want := range cases {
		if got := frameRate(in); got != want {
			t.Fatalf("frameRate(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestMuxer(t *testing.T) {
	cases := map[string]string{"MKV": "matroska", "aac": "adts", "MOV": "mov", "OGG": "ogg", "mp4": "mp4", ".webm": "webm"}
	for in, want := range cases {
		if got := Muxer(in); got != want {
			t.Fatalf("Muxer(%q) = %q, want %q", in, got, want)
		}
	}
}
