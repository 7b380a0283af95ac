package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	BitRate      string `json:"bit_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	return Parse(output)
}

// Parse decodes raw ffprobe JSON.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStream returns the first audio stream, if any.
func (r Result) AudioStream() (Stream, bool) {
	return r.firstOfType("audio")
}

// VideoStream returns the first video stream, if any. Attached cover art
// (mjpeg/png stills inside audio files) is skipped.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		switch strings.ToLower(stream.CodecName) {
		case "mjpeg", "png", "bmp":
			if stream.FrameRateValue() == 0 || stream.RFrameRate == "90000/1" {
				continue
			}
		}
		return stream, true
	}
	return Stream{}, false
}

func (r Result) firstOfType(codecType string) (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			return stream, true
		}
	}
	return Stream{}, false
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countOfType("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countOfType("audio")
}

func (r Result) countOfType(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	return nonNegative(parseFloat(r.Format.Size))
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	return nonNegative(parseFloat(r.Format.BitRate))
}

// BitRateValue returns the stream bitrate in bits per second, or 0 when unavailable.
func (s Stream) BitRateValue() int64 {
	return nonNegative(parseFloat(s.BitRate))
}

// SampleRateValue returns the audio sample rate in Hz, or 0 when unavailable.
func (s Stream) SampleRateValue() int {
	return int(nonNegative(parseFloat(s.SampleRate)))
}

// FrameRateValue returns the stream frame rate, preferring the average rate
// over the base rate. Returns 0 when neither parses.
func (s Stream) FrameRateValue() float64 {
	if rate := parseRational(s.AvgFrameRate); rate > 0 {
		return rate
	}
	if rate := parseRational(s.RFrameRate); rate > 0 {
		return rate
	}
	return 0
}

func parseRational(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	num, den, found := strings.Cut(cleaned, "/")
	if !found {
		rate := parseFloat(cleaned)
		if math.IsNaN(rate) {
			return 0
		}
		return rate
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

func nonNegative(value float64) int64 {
	if math.IsNaN(value) || value < 0 {
		return 0
	}
	return int64(value)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
