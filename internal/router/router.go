package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"truinconv/internal/config"
	"truinconv/internal/document"
	"truinconv/internal/formats"
	"truinconv/internal/imageconv"
	"truinconv/internal/logging"
	"truinconv/internal/services"
	"truinconv/internal/services/drapto"
	"truinconv/internal/transcode"
)

// ProgressFunc receives per-file progress in percent.
type ProgressFunc func(percent float64)

// Request describes one file conversion.
type Request struct {
	Input        string
	Output       string
	TargetFormat string
	Category     formats.Category
	Progress     ProgressFunc
}

// FileConverter handles formats whose conversion reports no progress.
type FileConverter interface {
	Convert(ctx context.Context, input, output, target string) error
}

// MediaConverter handles audio and video through ffmpeg.
type MediaConverter interface {
	ConvertAudio(ctx context.Context, input, output, target string, progress transcode.ProgressFunc) error
	ConvertVideo(ctx context.Context, input, output, target string, progress transcode.ProgressFunc) error
}

// VideoEngine is an alternative encoder for a single container.
type VideoEngine interface {
	Convert(ctx context.Context, input, output string, progress func(float64)) error
}

// Converters bundles the per-category backends. Drapto may be nil.
type Converters struct {
	Image    FileConverter
	Media    MediaConverter
	Document FileConverter
	Drapto   VideoEngine
}

// Router is the category dispatcher.
type Router struct {
	converters Converters
	logger     *slog.Logger
}

// New builds a Router over explicit backends.
func New(converters Converters, logger *slog.Logger) *Router {
	return &Router{
		converters: converters,
		logger:     logging.NewComponentLogger(logger, "router"),
	}
}

// NewFromConfig wires the production converters for cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Router {
	converters := Converters{
		Image:    imageconv.New(cfg.Image.JPEGQuality, logger),
		Media:    transcode.NewEncoder(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary, transcode.WithLogger(logger)),
		Document: document.New(cfg.Document.SofficeBinary, cfg.DocumentTimeout(), logger),
	}
	if cfg.Video.Engine == config.VideoEngineDrapto {
		converters.Drapto = drapto.NewEngine(drapto.NewLibrary(logger))
	}
	return New(converters, logger)
}

// Resolve returns the concrete category for a request: Media becomes Audio
// or Video based on the target format.
func Resolve(category formats.Category, target string) (formats.Category, error) {
	if category != formats.Media {
		return category, nil
	}
	switch {
	case formats.IsAudio(target):
		return formats.Audio, nil
	case formats.IsVideo(target):
		return formats.Video, nil
	}
	return "", services.Wrap(services.ErrUnsupported, "router", "resolve", fmt.Sprintf("%s is neither an audio nor a video format", strings.TrimSpace(target)), nil)
}

// Convert validates req and hands it to the matching converter.
func (r *Router) Convert(ctx context.Context, req Request) error {
	if err := validate(req); err != nil {
		return err
	}
	category, err := Resolve(req.Category, req.TargetFormat)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(req.TargetFormat)
	progress := func(p float64) {
		if req.Progress != nil {
			req.Progress(p)
		}
	}

	logging.WithContext(ctx, r.logger).Debug("dispatching conversion",
		logging.String("category", string(category)),
		logging.String("target", target),
		logging.String("output", req.Output),
	)

	switch category {
	case formats.Image:
		return r.fileConvert(ctx, r.converters.Image, req, target)
	case formats.Audio:
		if r.converters.Media == nil {
			return missingBackend(category)
		}
		return r.converters.Media.ConvertAudio(ctx, req.Input, req.Output, target, progress)
	case formats.Video:
		if r.converters.Drapto != nil && formats.Normalize(target) == "MKV" {
			return r.converters.Drapto.Convert(ctx, req.Input, req.Output, progress)
		}
		if r.converters.Media == nil {
			return missingBackend(category)
		}
		return r.converters.Media.ConvertVideo(ctx, req.Input, req.Output, target, progress)
	case formats.Document:
		return r.fileConvert(ctx, r.converters.Document, req, target)
	default:
		return services.Wrap(services.ErrUnsupported, "router", "dispatch", fmt.Sprintf("unsupported conversion category: %s", category), nil)
	}
}

func (r *Router) fileConvert(ctx context.Context, conv FileConverter, req Request, target string) error {
	if conv == nil {
		return missingBackend(req.Category)
	}
	if err := conv.Convert(ctx, req.Input, req.Output, target); err != nil {
		return err
	}
	if req.Progress != nil {
		req.Progress(100)
	}
	return nil
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.Input) == "":
		return services.Wrap(services.ErrValidation, "router", "validate", "input file cannot be empty", nil)
	case strings.TrimSpace(req.Output) == "":
		return services.Wrap(services.ErrValidation, "router", "validate", "output file cannot be empty", nil)
	case strings.TrimSpace(req.TargetFormat) == "":
		return services.Wrap(services.ErrValidation, "router", "validate", "target format cannot be empty", nil)
	case req.Category == "":
		return services.Wrap(services.ErrValidation, "router", "validate", "conversion category cannot be empty", nil)
	}
	return nil
}

func missingBackend(category formats.Category) error {
	return services.Wrap(services.ErrConfiguration, "router", "dispatch", fmt.Sprintf("no converter configured for %s", category.DisplayName()), nil)
}
