package drapto

import (
	"context"
	"os"
	"path/filepath"

	"truinconv/internal/fileutil"
	"truinconv/internal/services"
)

// Engine converts a video into an AV1 MKV at an exact output path.
type Engine struct {
	client Client
}

// NewEngine wraps a Client.
func NewEngine(client Client) *Engine {
	return &Engine{client: client}
}

// Convert encodes input into a scratch directory next to output and moves
// the result into place.
func (e *Engine) Convert(ctx context.Context, input, output string, progress func(float64)) error {
	workDir, err := os.MkdirTemp(filepath.Dir(output), ".drapto-")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "drapto", "prepare", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	produced, err := e.client.Encode(ctx, input, workDir, func(update ProgressUpdate) {
		if progress != nil {
			progress(update.Percent)
		}
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "drapto", "encode", filepath.Base(input), err)
	}
	if err := fileutil.MoveFile(produced, output); err != nil {
		return services.Wrap(services.ErrExternalTool, "drapto", "finalize", filepath.Base(output), err)
	}
	return nil
}
