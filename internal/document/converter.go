package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"truinconv/internal/fileutil"
	"truinconv/internal/logging"
	"truinconv/internal/services"
)

// exportFilters maps target formats to soffice --convert-to arguments.
var exportFilters = map[string]string{
	"PDF":  "pdf:writer_pdf_Export",
	"DOCX": "docx:MS Word 2007 XML",
}

// importFilters maps source extensions that need an explicit import filter.
var importFilters = map[string]string{
	"PDF": "writer_pdf_import",
}

// Converter runs soffice conversions.
type Converter struct {
	binary         string
	timeout        time.Duration
	logger         *slog.Logger
	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New constructs a Converter. A non-positive timeout disables the per-file limit.
func New(binary string, timeout time.Duration, logger *slog.Logger) *Converter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "soffice"
	}
	return &Converter{
		binary:         binary,
		timeout:        timeout,
		logger:         logging.NewComponentLogger(logger, "document"),
		commandContext: exec.CommandContext,
	}
}

// Convert converts input into target and places the result at output.
func (c *Converter) Convert(ctx context.Context, input, output, target string) error {
	format := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(target), "."))
	filter, ok := exportFilters[format]
	if !ok {
		return services.Wrap(services.ErrUnsupported, "document", "convert", fmt.Sprintf("unsupported document format: %s", strings.TrimSpace(target)), nil)
	}
	if _, err := os.Stat(input); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "document", "convert", filepath.Base(input), err)
		}
		return services.Wrap(services.ErrExternalTool, "document", "convert", filepath.Base(input), err)
	}

	workDir, err := os.MkdirTemp(filepath.Dir(output), ".soffice-")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "document", "prepare", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.buildArgs(input, workDir, filter)
	cmd := c.commandContext(ctx, c.binary, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	logging.WithContext(ctx, c.logger).Debug("soffice starting",
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")),
	)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return services.Wrap(services.ErrExternalTool, "document", "soffice", fmt.Sprintf("timed out after %s", c.timeout), nil)
			}
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "document", "soffice", summarize(combined.String(), input), err)
	}

	produced := filepath.Join(workDir, stem(input)+"."+strings.ToLower(format))
	if _, err := os.Stat(produced); err != nil {
		// soffice exits 0 even when a filter fails; the missing file is the signal.
		return services.Wrap(services.ErrExternalTool, "document", "soffice", summarize(combined.String(), input)+": no output produced", err)
	}
	if err := fileutil.MoveFile(produced, output); err != nil {
		return services.Wrap(services.ErrExternalTool, "document", "finalize", filepath.Base(output), err)
	}
	return nil
}

func (c *Converter) buildArgs(input, workDir, filter string) []string {
	profile := url.URL{Scheme: "file", Path: filepath.Join(workDir, "profile")}
	args := []string{
		"-env:UserInstallation=" + profile.String(),
		"--headless",
		"--norestore",
	}
	source := strings.ToUpper(strings.TrimPrefix(filepath.Ext(input), "."))
	if importFilter, ok := importFilters[source]; ok {
		args = append(args, "--infilter="+importFilter)
	}
	args = append(args, "--convert-to", filter, "--outdir", workDir, input)
	return args
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func summarize(output, input string) string {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), "error") {
			return line
		}
	}
	return filepath.Base(input)
}
