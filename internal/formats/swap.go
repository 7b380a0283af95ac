package formats

import (
	"errors"
	"fmt"
)

// ErrMediaSwap reports an attempted swap between an audio and a video format.
var ErrMediaSwap = errors.New("cannot swap between audio and video formats")

// Swap exchanges source and target. The swapped pair must itself be a
// permitted conversion in category; within Media the two formats must both be
// audio or both be video.
func Swap(category Category, source, target string) (string, string, error) {
	source, target = Normalize(source), Normalize(target)
	if source == "" || target == "" {
		return "", "", errors.New("both source and target formats are required to swap")
	}
	if category == Media && IsAudio(source) != IsAudio(target) {
		return "", "", fmt.Errorf("%w: audio formats can only be converted to other audio formats, and video formats to other video formats", ErrMediaSwap)
	}
	if !Allowed(category, target, source) {
		return "", "", fmt.Errorf("%s cannot be converted to %s in %s", target, source, category.DisplayName())
	}
	return target, source, nil
}
