package imageconv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"truinconv/internal/fileutil"
	"truinconv/internal/logging"
	"truinconv/internal/services"
)

// DefaultJPEGQuality is used when a Converter is built with an out-of-range quality.
const DefaultJPEGQuality = 95

// formatsWithoutTransparency are composited onto white before encoding.
var formatsWithoutTransparency = map[string]struct{}{
	"JPG":  {},
	"JPEG": {},
}

// Converter encodes decoded images into a target format.
type Converter struct {
	jpegQuality int
	logger      *slog.Logger
}

// New returns a Converter. Quality outside 1..100 falls back to DefaultJPEGQuality.
func New(jpegQuality int, logger *slog.Logger) *Converter {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Converter{
		jpegQuality: jpegQuality,
		logger:      logging.NewComponentLogger(logger, "imageconv"),
	}
}

// Convert reads input, prepares it for target, and writes output atomically.
func (c *Converter) Convert(ctx context.Context, input, output, target string) error {
	if err := validateParameters(input, output, target); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, sourceFormat, err := readImage(input)
	if err != nil {
		return err
	}
	prepared := PrepareForFormat(src, target)

	formatName := EncoderName(target)
	encode, ok := c.encoderFor(formatName)
	if !ok {
		return writeError(target, nil)
	}
	if err := fileutil.WriteAtomic(output, 0o644, func(w io.Writer) error {
		return encode(w, prepared)
	}); err != nil {
		return writeError(target, err)
	}

	logging.WithContext(ctx, c.logger).Debug("image converted",
		logging.String("source_format", sourceFormat),
		logging.String("target_format", formatName),
		logging.Int("width", prepared.Bounds().Dx()),
		logging.Int("height", prepared.Bounds().Dy()),
	)
	return nil
}

func validateParameters(input, output, target string) error {
	switch {
	case strings.TrimSpace(input) == "":
		return services.Wrap(services.ErrValidation, "image", "validate", "input file cannot be empty", nil)
	case strings.TrimSpace(output) == "":
		return services.Wrap(services.ErrValidation, "image", "validate", "output file cannot be empty", nil)
	case strings.TrimSpace(target) == "":
		return services.Wrap(services.ErrValidation, "image", "validate", "target format cannot be empty", nil)
	}
	return nil
}

func readImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", services.Wrap(services.ErrNotFound, "image", "read", filepath.Base(path), err)
		}
		return nil, "", services.Wrap(services.ErrExternalTool, "image", "read", filepath.Base(path), err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		msg := fmt.Sprintf("cannot read image file: %s. File may be corrupted or unsupported", filepath.Base(path))
		return nil, "", services.Wrap(services.ErrUnsupported, "image", "decode", msg, err)
	}
	return img, format, nil
}

func writeError(target string, err error) error {
	msg := fmt.Sprintf("failed to write image in format: %s. Format may not be supported", strings.TrimSpace(target))
	return services.Wrap(services.ErrUnsupported, "image", "encode", msg, err)
}

// NeedsFlatten reports whether target lacks transparency support.
func NeedsFlatten(target string) bool {
	_, ok := formatsWithoutTransparency[strings.ToUpper(strings.TrimSpace(target))]
	return ok
}

// PrepareForFormat flattens src when target cannot store alpha.
func PrepareForFormat(src image.Image, target string) image.Image {
	if NeedsFlatten(target) {
		return Flatten(src)
	}
	return src
}

// Flatten composites src onto an opaque white canvas of the same bounds.
func Flatten(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Over)
	return dst
}

// EncoderName lower-cases target and maps "jpg" to "jpeg".
func EncoderName(target string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(target), "."))
	switch name {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return name
}

type encodeFunc func(io.Writer, image.Image) error

func (c *Converter) encoderFor(name string) (encodeFunc, bool) {
	switch name {
	case "jpeg":
		quality := c.jpegQuality
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
		}, true
	case "png":
		return png.Encode, true
	case "bmp":
		return bmp.Encode, true
	case "gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, &gif.Options{NumColors: 256, Drawer: draw.FloydSteinberg})
		}, true
	case "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, true
	}
	return nil, false
}
