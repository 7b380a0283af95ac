package transcode

import (
	"fmt"
	"math"
	"strings"

	"truinconv/internal/media/ffprobe"
	"truinconv/internal/services"
)

// Audio fallbacks and limits in bits per second unless noted.
const (
	FallbackAudioBitRate    int64 = 192000
	FallbackAudioSampleRate       = 48000
	FallbackAudioChannels         = 2
	MinAudioBitRate         int64 = 128000
)

// Video fallbacks and limits in bits per second unless noted.
const (
	FallbackVideoBitRate int64 = 3000000
	FallbackFrameRate          = 30
	MaxFrameRate               = 60
	MinVideoBitRate      int64 = 1500000
	MaxVideoBitRate      int64 = 20000000
	MinWebMBitRate       int64 = 1000000
	MaxWebMBitRate       int64 = 8000000
)

var audioCodecs = map[string]string{
	"MP3":  "libmp3lame",
	"AAC":  "aac",
	"FLAC": "flac",
	"OGG":  "libvorbis",
	"WAV":  "pcm_s16le",
}

var videoCodecs = map[string]string{
	"MP4":  "libx264",
	"AVI":  "libx264",
	"MKV":  "libx264",
	"MOV":  "libx264",
	"WEBM": "libvpx",
}

// muxers maps a target format onto ffmpeg's -f name where the two differ.
var muxers = map[string]string{
	"MKV": "matroska",
	"AAC": "adts",
}

// AudioSettings is the parameter set for an audio stream.
type AudioSettings struct {
	Codec      string
	BitRate    int64
	SampleRate int
	Channels   int
	// Format is the lower-case target, also used as the file extension.
	Format string
}

// VideoSettings is the parameter set for a video conversion.
type VideoSettings struct {
	Codec     string
	BitRate   int64
	FrameRate int
	// Width and Height are zero when the source size is unknown.
	Width  int
	Height int
	// Audio is nil when the source carries no audio stream.
	Audio  *AudioSettings
	Format string
}

func normalizeTarget(target string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(target), "."))
}

// AudioSettingsFor derives audio encoding parameters for target from the
// probed source.
func AudioSettingsFor(probe ffprobe.Result, target string) (AudioSettings, error) {
	format := normalizeTarget(target)
	codec, ok := audioCodecs[format]
	if !ok {
		return AudioSettings{}, services.Wrap(services.ErrUnsupported, "audio", "settings", fmt.Sprintf("unsupported audio format: %s", strings.TrimSpace(target)), nil)
	}
	settings := audioParams(probe)
	settings.Codec = codec
	settings.Format = strings.ToLower(format)
	return settings, nil
}

func audioParams(probe ffprobe.Result) AudioSettings {
	stream, ok := probe.AudioStream()
	if !ok {
		return AudioSettings{
			BitRate:    FallbackAudioBitRate,
			SampleRate: FallbackAudioSampleRate,
			Channels:   FallbackAudioChannels,
		}
	}
	settings := AudioSettings{
		BitRate:    FallbackAudioBitRate,
		SampleRate: stream.SampleRateValue(),
		Channels:   stream.Channels,
	}
	if rate := stream.BitRateValue(); rate >= MinAudioBitRate {
		settings.BitRate = rate
	}
	if settings.SampleRate <= 0 {
		settings.SampleRate = FallbackAudioSampleRate
	}
	if settings.Channels <= 0 {
		settings.Channels = FallbackAudioChannels
	}
	return settings
}

// VideoSettingsFor derives video encoding parameters for target from the
// probed source.
func VideoSettingsFor(probe ffprobe.Result, target string) (VideoSettings, error) {
	format := normalizeTarget(target)
	codec, ok := videoCodecs[format]
	if !ok {
		return VideoSettings{}, services.Wrap(services.ErrUnsupported, "video", "settings", fmt.Sprintf("unsupported video format: %s", strings.TrimSpace(target)), nil)
	}
	settings := VideoSettings{
		Codec:     codec,
		BitRate:   FallbackVideoBitRate,
		FrameRate: FallbackFrameRate,
		Format:    strings.ToLower(format),
	}

	if stream, ok := probe.VideoStream(); ok {
		if stream.Width > 0 && stream.Height > 0 {
			settings.Width = stream.Width
			settings.Height = stream.Height
		}
		settings.BitRate = videoBitRate(sourceVideoBitRate(probe, stream), format)
		settings.FrameRate = frameRate(stream.FrameRateValue())
	}

	if _, ok := probe.AudioStream(); ok {
		audio := audioParams(probe)
		audio.Codec = "aac"
		// The WebM muxer only accepts Vorbis or Opus audio.
		if format == "WEBM" {
			audio.Codec = "libvorbis"
		}
		audio.Format = settings.Format
		settings.Audio = &audio
	}
	return settings, nil
}

// sourceVideoBitRate prefers the stream bitrate. Matroska and WebM rarely
// carry one per stream, so the container rate stands in.
func sourceVideoBitRate(probe ffprobe.Result, stream ffprobe.Stream) int64 {
	if rate := stream.BitRateValue(); rate > 0 {
		return rate
	}
	return probe.BitRate()
}

func videoBitRate(source int64, format string) int64 {
	if source <= 0 {
		return FallbackVideoBitRate
	}
	lo, hi := MinVideoBitRate, MaxVideoBitRate
	if format == "WEBM" {
		lo, hi = MinWebMBitRate, MaxWebMBitRate
	}
	return min(max(source, lo), hi)
}

func frameRate(source float64) int {
	if source <= 0 || source > MaxFrameRate || math.IsNaN(source) {
		return FallbackFrameRate
	}
	return max(1, int(math.Round(source)))
}

// Muxer returns ffmpeg's -f name for a target format.
func Muxer(target string) string {
	format := normalizeTarget(target)
	if muxer, ok := muxers[format]; ok {
		return muxer
	}
	return strings.ToLower(format)
}
