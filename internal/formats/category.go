package formats

import (
	"fmt"
	"strings"
)

// Category selects which converter handles a file.
type Category string

const (
	Image    Category = "image"
	Audio    Category = "audio"
	Video    Category = "video"
	Document Category = "document"
	// Media groups audio and video under one picker. It is resolved to Audio
	// or Video per target format before dispatch.
	Media Category = "media"
)

var displayNames = map[Category]string{
	Image:    "Images",
	Audio:    "Audio",
	Video:    "Video",
	Document: "Documents",
	Media:    "Media",
}

var categoryAliases = map[string]Category{
	"image":     Image,
	"images":    Image,
	"audio":     Audio,
	"video":     Video,
	"videos":    Video,
	"media":     Media,
	"doc":       Document,
	"docs":      Document,
	"document":  Document,
	"documents": Document,
}

// Categories lists every category in menu order.
func Categories() []Category {
	return []Category{Image, Audio, Video, Media, Document}
}

// DisplayName returns the human-readable name used in prompts and tables.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// ParseCategory resolves a display name or alias, case-insensitively.
func ParseCategory(value string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if category, ok := categoryAliases[key]; ok {
		return category, nil
	}
	return "", fmt.Errorf("unknown conversion category: %s", value)
}
