package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"truinconv/internal/config"
	"truinconv/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// EnsureOutputDirectory creates path when missing and then verifies access.
func EnsureOutputDirectory(path string) Result {
	const name = "Output directory"
	if path == "" {
		return Result{Name: name, Detail: "no output directory"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckSystemDeps evaluates the external binaries for the given config and,
// when ffmpeg resolves, the encoders the converters select.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if len(statuses) > 0 && statuses[0].Available {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		encoders, _ := deps.CheckFFmpegEncoders(checkCtx, cfg.Media.FFmpegBinary, deps.EncoderNames)
		statuses = append(statuses, encoders)
	}
	return statuses
}
