package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"truinconv/internal/formats"
	"truinconv/internal/history"
	"truinconv/internal/router"
	"truinconv/internal/services"
)

// Job describes one batch.
type Job struct {
	Files     []string
	Source    string
	Target    string
	Category  formats.Category
	OutputDir string
	Overwrite bool
}

// Event is a textual progress notification.
type Event struct {
	Index   int
	Total   int
	File    string
	Percent float64
	Message string
}

// Result is the outcome of one input file.
type Result struct {
	Input    string
	Output   string
	Status   history.Status
	Err      error
	Duration time.Duration
}

// Report summarizes a finished batch.
type Report struct {
	BatchID string
	Results []Result
}

// Count returns the number of results with status.
func (r *Report) Count(status history.Status) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failures returns results that neither succeeded nor were skipped.
func (r *Report) Failures() []Result {
	if r == nil {
		return nil
	}
	var failed []Result
	for _, res := range r.Results {
		switch res.Status {
		case history.StatusSucceeded, history.StatusSkipped:
		default:
			failed = append(failed, res)
		}
	}
	return failed
}

// Converter performs one routed conversion.
type Converter interface {
	Convert(ctx context.Context, req router.Request) error
}

// Recorder persists batch history. *history.Store satisfies it.
type Recorder interface {
	BeginBatch(ctx context.Context, info history.BatchInfo) (*history.Batch, error)
	RecordResult(ctx context.Context, batchID int64, conv history.Conversion) (*history.Conversion, error)
	FinishBatch(ctx context.Context, batchID int64) (*history.Batch, error)
}

// ErrSkipped marks files rejected for not matching the source format.
var ErrSkipped = errors.New("skipped")

// Validate checks a job the way the interactive form does before starting.
func Validate(job Job) error {
	if len(job.Files) == 0 {
		return services.Wrap(services.ErrValidation, "batch", "validate", "no files selected", nil)
	}
	if strings.TrimSpace(job.Source) == "" || strings.TrimSpace(job.Target) == "" {
		return services.Wrap(services.ErrValidation, "batch", "validate", "missing format selection", nil)
	}
	if strings.TrimSpace(job.OutputDir) == "" {
		return services.Wrap(services.ErrValidation, "batch", "validate", "no output directory", nil)
	}
	if !job.Category.Valid() {
		return services.Wrap(services.ErrValidation, "batch", "validate", fmt.Sprintf("unknown conversion category: %s", job.Category), nil)
	}
	source, target := formats.Normalize(job.Source), formats.Normalize(job.Target)
	if !formats.Allowed(job.Category, source, target) {
		msg := fmt.Sprintf("cannot convert %s to %s in %s", source, target, job.Category.DisplayName())
		if allowed := formats.Targets(job.Category, source); len(allowed) > 0 {
			msg += fmt.Sprintf(" (allowed: %s)", strings.Join(allowed, ", "))
		}
		return services.Wrap(services.ErrValidation, "batch", "validate", msg, nil)
	}
	return nil
}

var _ Recorder = (*history.Store)(nil)
