package transcode

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"truinconv/internal/fileutil"
	"truinconv/internal/logging"
	"truinconv/internal/media/ffprobe"
	"truinconv/internal/services"
)

// ProgressFunc receives conversion progress in percent (0-100).
type ProgressFunc func(percent float64)

type commandFactory func(ctx context.Context, name string, args ...string) *exec.Cmd

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

const (
	progressTimePrefix   = "out_time_us="
	progressLegacyPrefix = "out_time_ms="
	progressEndLine      = "progress=end"
	stderrTailBytes      = 2048
)

// Encoder runs audio and video conversions through ffmpeg.
type Encoder struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger

	commandContext commandFactory
	probe          probeFunc
}

// Option customizes an Encoder.
type Option func(*Encoder)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

// WithCommandContext overrides process creation; tests use it to observe
// the command line.
func WithCommandContext(factory func(ctx context.Context, name string, args ...string) *exec.Cmd) Option {
	return func(e *Encoder) {
		if factory != nil {
			e.commandContext = factory
		}
	}
}

// NewEncoder constructs an Encoder for the given binaries.
func NewEncoder(ffmpegBinary, ffprobeBinary string, opts ...Option) *Encoder {
	e := &Encoder{
		ffmpeg:         defaultBinary(ffmpegBinary, "ffmpeg"),
		ffprobe:        defaultBinary(ffprobeBinary, "ffprobe"),
		commandContext: exec.CommandContext,
		probe:          ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "transcode")
	return e
}

func defaultBinary(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// Probe inspects input with ffprobe.
func (e *Encoder) Probe(ctx context.Context, input string) (ffprobe.Result, error) {
	result, err := e.probe(ctx, e.ffprobe, input)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, "transcode", "ffprobe", filepath.Base(input), err)
	}
	return result, nil
}

// ConvertAudio converts input to an audio target at output.
func (e *Encoder) ConvertAudio(ctx context.Context, input, output, target string, progress ProgressFunc) error {
	probe, err := e.Probe(ctx, input)
	if err != nil {
		return err
	}
	settings, err := AudioSettingsFor(probe, target)
	if err != nil {
		return err
	}
	logging.WithContext(ctx, e.logger).Debug("audio settings derived",
		logging.String("codec", settings.Codec),
		logging.Int64("bitrate", settings.BitRate),
		logging.Int("sample_rate", settings.SampleRate),
		logging.Int("channels", settings.Channels),
	)
	return e.Run(ctx, settings, input, output, probe.DurationSeconds(), progress)
}

// ConvertVideo converts input to a video target at output.
func (e *Encoder) ConvertVideo(ctx context.Context, input, output, target string, progress ProgressFunc) error {
	probe, err := e.Probe(ctx, input)
	if err != nil {
		return err
	}
	settings, err := VideoSettingsFor(probe, target)
	if err != nil {
		return err
	}
	logging.WithContext(ctx, e.logger).Debug("video settings derived",
		logging.String("codec", settings.Codec),
		logging.Int64("bitrate", settings.BitRate),
		logging.Int("frame_rate", settings.FrameRate),
		logging.Int("width", settings.Width),
		logging.Int("height", settings.Height),
		logging.Bool("audio", settings.Audio != nil),
	)
	return e.Run(ctx, settings, input, output, probe.DurationSeconds(), progress)
}

// Run executes ffmpeg for settings, writing to a temporary sibling of output
// that is renamed into place on success and removed otherwise.
func (e *Encoder) Run(ctx context.Context, settings Settings, input, output string, durationSeconds float64, progress ProgressFunc) (err error) {
	tmp, err := fileutil.TempSibling(output)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "prepare output", filepath.Base(output), err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	args := settings.Args(input, tmp)
	// Progress flags go first so they apply globally.
	args = append([]string{"-progress", "pipe:1", "-nostats"}, args...)

	cmd := e.commandContext(ctx, e.ffmpeg, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "attach stdout", err)
	}
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stderr = stderr

	logging.WithContext(ctx, e.logger).Debug("ffmpeg starting",
		logging.String("binary", e.ffmpeg),
		logging.String("args", strings.Join(args, " ")),
	)
	if err = cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", "start", err)
	}

	monitorProgress(stdout, durationSeconds, progress)

	if waitErr := cmd.Wait(); waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = filepath.Base(input)
		}
		return services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", lastLine(detail), waitErr)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	if err = os.Rename(tmp, output); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcode", "finalize", filepath.Base(output), err)
	}
	if progress != nil {
		progress(100)
	}
	return nil
}

// monitorProgress consumes `-progress pipe:1` key=value lines until EOF.
func monitorProgress(r io.Reader, durationSeconds float64, progress ProgressFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if progress == nil {
			continue
		}
		if line == progressEndLine {
			progress(100)
			continue
		}
		if percent, ok := parseProgressLine(line, durationSeconds); ok {
			progress(percent)
		}
	}
	// Drain anything left after a scanner error so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func parseProgressLine(line string, durationSeconds float64) (float64, bool) {
	var raw string
	switch {
	case strings.HasPrefix(line, progressTimePrefix):
		raw = strings.TrimPrefix(line, progressTimePrefix)
	case strings.HasPrefix(line, progressLegacyPrefix):
		// ffmpeg reports out_time_ms in microseconds as well.
		raw = strings.TrimPrefix(line, progressLegacyPrefix)
	default:
		return 0, false
	}
	if durationSeconds <= 0 {
		return 0, false
	}
	micros, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}
	percent := float64(micros) / 1e6 / durationSeconds * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
