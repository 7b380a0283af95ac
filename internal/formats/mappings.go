package formats

import (
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	imageFormats    = []string{"BMP", "GIF", "JPEG", "JPG", "PNG", "TIFF"}
	audioFormats    = []string{"AAC", "FLAC", "MP3", "OGG", "WAV"}
	videoFormats    = []string{"AVI", "MKV", "MOV", "MP4", "WEBM"}
	documentFormats = []string{"DOCX", "PDF"}
)

var upper = cases.Upper(language.Und)

// mappings is keyed by concrete category, then source format.
var mappings = map[Category]map[string][]string{
	Image: {
		"JPG":  {"PNG", "BMP", "GIF", "TIFF"},
		"JPEG": {"PNG", "BMP", "GIF", "TIFF"},
		"PNG":  {"JPG", "JPEG", "BMP", "GIF", "TIFF"},
		"BMP":  {"JPG", "JPEG", "PNG", "GIF", "TIFF"},
		"GIF":  {"JPG", "JPEG", "PNG", "BMP", "TIFF"},
		"TIFF": {"JPG", "JPEG", "PNG", "BMP", "GIF"},
	},
	Audio:    allToOthers(audioFormats),
	Video:    allToOthers(videoFormats),
	Document: {"DOCX": {"PDF"}, "PDF": {"DOCX"}},
}

func allToOthers(set []string) map[string][]string {
	out := make(map[string][]string, len(set))
	for _, source := range set {
		for _, target := range set {
			if target != source {
				out[source] = append(out[source], target)
			}
		}
	}
	return out
}

// Normalize trims whitespace and a leading dot and upper-cases the result.
func Normalize(format string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(format), ".")
	return upper.String(strings.TrimSpace(trimmed))
}

// IsAudio reports whether format is one of the audio formats.
func IsAudio(format string) bool {
	return slices.Contains(audioFormats, Normalize(format))
}

// IsVideo reports whether format is one of the video formats.
func IsVideo(format string) bool {
	return slices.Contains(videoFormats, Normalize(format))
}

// CategoryOf returns the concrete category a format belongs to.
func CategoryOf(format string) (Category, bool) {
	normalized := Normalize(format)
	for _, category := range []Category{Image, Audio, Video, Document} {
		if _, ok := mappings[category][normalized]; ok {
			return category, true
		}
	}
	return "", false
}

func table(category Category) map[string][]string {
	if category == Media {
		merged := make(map[string][]string, len(audioFormats)+len(videoFormats))
		for k, v := range mappings[Audio] {
			merged[k] = v
		}
		for k, v := range mappings[Video] {
			merged[k] = v
		}
		return merged
	}
	return mappings[category]
}

// Sources returns the formats that can be converted within category. Media
// lists audio formats first, then video formats, each group sorted.
func Sources(category Category) []string {
	if category == Media {
		out := append([]string(nil), audioFormats...)
		return append(out, videoFormats...)
	}
	lookup := table(category)
	out := make([]string, 0, len(lookup))
	for source := range lookup {
		out = append(out, source)
	}
	slices.Sort(out)
	return out
}

// Targets returns the sorted formats source may be converted to. The result
// is empty when source is unknown to category.
func Targets(category Category, source string) []string {
	targets := table(category)[Normalize(source)]
	out := append([]string(nil), targets...)
	slices.Sort(out)
	return out
}

// Allowed reports whether converting source to target is permitted in category.
func Allowed(category Category, source, target string) bool {
	return slices.Contains(table(category)[Normalize(source)], Normalize(target))
}

// Describe returns "audio" or "video" for media formats and "" otherwise.
func Describe(format string) string {
	switch {
	case IsAudio(format):
		return "audio"
	case IsVideo(format):
		return "video"
	default:
		return ""
	}
}

// Extension returns the file extension of path without the dot, or "" when
// the name has none.
func Extension(path string) string {
	ext := filepath.Ext(filepath.Base(path))
	if len(ext) <= 1 {
		return ""
	}
	return ext[1:]
}

// HasExtension reports whether path carries the extension for format,
// ignoring case.
func HasExtension(path, format string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	return strings.EqualFold(ext, Normalize(format))
}

// FilterByFormat keeps paths whose extension matches format, dropping
// duplicates while preserving first-seen order. Rejected paths are returned
// separately so callers can report them.
func FilterByFormat(paths []string, format string) (matched, rejected []string) {
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		key := filepath.Clean(path)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if HasExtension(path, format) {
			matched = append(matched, path)
		} else {
			rejected = append(rejected, path)
		}
	}
	return matched, rejected
}
