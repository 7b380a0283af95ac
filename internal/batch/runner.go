package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"truinconv/internal/formats"
	"truinconv/internal/history"
	"truinconv/internal/logging"
	"truinconv/internal/preflight"
	"truinconv/internal/router"
	"truinconv/internal/services"
)

// LockFileName is created inside the output directory while a batch runs.
const LockFileName = ".truinconv.lock"

// EventFunc receives progress events. It is called from the worker goroutine.
type EventFunc func(Event)

// Runner executes batches.
type Runner struct {
	converter Converter
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder records every batch in the history store.
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) { r.recorder = recorder }
}

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner constructs a runner around converter.
func NewRunner(converter Converter, opts ...Option) *Runner {
	r := &Runner{
		converter: converter,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r
}

// Start runs job on a background goroutine. The returned channel yields the
// report (or error) once and is then closed.
func (r *Runner) Start(ctx context.Context, job Job, onEvent EventFunc) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		report, err := r.Run(ctx, job, onEvent)
		done <- Outcome{Report: report, Err: err}
	}()
	return done
}

// Outcome is delivered by Start.
type Outcome struct {
	Report *Report
	Err    error
}

// Run validates job and converts every file in order. Per-file failures are
// reported in the Report; the returned error covers validation, locking and
// setup only.
func (r *Runner) Run(ctx context.Context, job Job, onEvent EventFunc) (*Report, error) {
	if r.converter == nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "run", "no converter configured", nil)
	}
	if err := Validate(job); err != nil {
		return nil, err
	}
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	job.Source = formats.Normalize(job.Source)
	job.Target = formats.Normalize(job.Target)

	outputDir, err := filepath.Abs(job.OutputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "output dir", "resolve path", err)
	}
	if check := preflight.EnsureOutputDirectory(outputDir); !check.Passed {
		return nil, services.Wrap(services.ErrValidation, "batch", "output dir", check.Detail, nil)
	}

	lock := flock.New(filepath.Join(outputDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "batch", "lock", fmt.Sprintf("another batch is writing to %s", outputDir), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	report := &Report{BatchID: uuid.NewString()}
	ctx = services.WithBatchID(ctx, report.BatchID)
	ctx = services.WithCategory(ctx, job.Category.DisplayName())
	logger := logging.WithContext(ctx, r.logger)

	matched, rejected := formats.FilterByFormat(job.Files, job.Source)
	total := len(matched) + len(rejected)

	batchID := r.begin(ctx, logger, report.BatchID, job, outputDir, total)
	logger.Info("batch started",
		logging.String("source", job.Source),
		logging.String("target", job.Target),
		logging.String("output_dir", outputDir),
		logging.Int("files", len(matched)),
		logging.Int("skipped", len(rejected)),
	)

	index := 0
	for _, path := range rejected {
		index++
		res := Result{
			Input:  path,
			Status: history.StatusSkipped,
			Err:    fmt.Errorf("%w: not a %s file", ErrSkipped, job.Source),
		}
		onEvent(Event{Index: index, Total: total, File: path, Message: fmt.Sprintf("skipped %s: not a %s file", filepath.Base(path), job.Source)})
		r.record(ctx, logger, batchID, res)
		report.Results = append(report.Results, res)
	}

	names := newPlanner(outputDir, job.Target, job.Overwrite)
	for _, path := range matched {
		index++
		if err := ctx.Err(); err != nil {
			res := Result{Input: path, Status: history.StatusCanceled, Err: err}
			onEvent(Event{Index: index, Total: total, File: path, Message: fmt.Sprintf("canceled %s", filepath.Base(path))})
			r.record(ctx, logger, batchID, res)
			report.Results = append(report.Results, res)
			continue
		}
		res := r.convertOne(ctx, job, names.next(path), path, index, total, onEvent)
		r.record(ctx, logger, batchID, res)
		report.Results = append(report.Results, res)
	}

	r.finish(ctx, logger, batchID)
	logger.Info("batch finished",
		logging.Int("succeeded", report.Count(history.StatusSucceeded)),
		logging.Int("failed", len(report.Failures())),
		logging.Int("skipped", report.Count(history.StatusSkipped)),
	)
	return report, nil
}

func (r *Runner) convertOne(ctx context.Context, job Job, output, input string, index, total int, onEvent EventFunc) Result {
	ctx = services.WithFile(ctx, input)
	logger := logging.WithContext(ctx, r.logger)
	name := filepath.Base(input)

	onEvent(Event{Index: index, Total: total, File: input, Message: fmt.Sprintf("converting %s (%d/%d)", name, index, total)})
	started := r.now()
	err := r.converter.Convert(ctx, router.Request{
		Input:        input,
		Output:       output,
		TargetFormat: job.Target,
		Category:     job.Category,
		Progress: func(percent float64) {
			onEvent(Event{Index: index, Total: total, File: input, Percent: percent})
		},
	})
	res := Result{Input: input, Output: output, Err: err, Duration: r.now().Sub(started)}
	if err != nil {
		res.Status = services.FailureStatus(err)
		res.Output = ""
		logger.Warn("conversion failed", logging.Error(err), logging.String("status", string(res.Status)))
		onEvent(Event{Index: index, Total: total, File: input, Message: fmt.Sprintf("failed %s: %v", name, err)})
		return res
	}
	res.Status = history.StatusSucceeded
	logger.Info("conversion succeeded", logging.String("output", output), logging.Duration("duration", res.Duration))
	onEvent(Event{Index: index, Total: total, File: input, Percent: 100, Message: fmt.Sprintf("converted %s -> %s", name, filepath.Base(output))})
	return res
}

func (r *Runner) begin(ctx context.Context, logger *slog.Logger, batchUUID string, job Job, outputDir string, total int) int64 {
	if r.recorder == nil {
		return 0
	}
	batch, err := r.recorder.BeginBatch(context.WithoutCancel(ctx), history.BatchInfo{
		UUID:         batchUUID,
		Category:     job.Category.DisplayName(),
		SourceFormat: job.Source,
		TargetFormat: job.Target,
		OutputDir:    outputDir,
		Total:        total,
	})
	if err != nil {
		logger.Warn("history begin failed", logging.Error(err))
		return 0
	}
	return batch.ID
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, batchID int64, res Result) {
	if r.recorder == nil || batchID == 0 {
		return
	}
	conv := history.Conversion{
		InputPath:  res.Input,
		OutputPath: res.Output,
		Status:     res.Status,
		Duration:   res.Duration,
	}
	if res.Err != nil {
		conv.ErrorMessage = res.Err.Error()
	}
	if _, err := r.recorder.RecordResult(context.WithoutCancel(ctx), batchID, conv); err != nil {
		logger.Warn("history record failed", logging.Error(err), logging.String("input", res.Input))
	}
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, batchID int64) {
	if r.recorder == nil || batchID == 0 {
		return
	}
	if _, err := r.recorder.FinishBatch(context.WithoutCancel(ctx), batchID); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("history finish failed", logging.Error(err))
	}
}
