package drapto

import (
	"context"
	"time"
)

// ProgressUpdate captures Drapto progress events.
type ProgressUpdate struct {
	Percent float64
	Stage   string
	Message string
	ETA     time.Duration
}

// Client defines Drapto encoding behaviour. Encode writes <stem>.mkv into
// outputDir and returns its path.
type Client interface {
	Encode(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error)
}
