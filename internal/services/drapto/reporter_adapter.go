package drapto

import (
	"log/slog"

	draptolib "github.com/five82/drapto"

	"truinconv/internal/logging"
)

// progressReporter adapts the Drapto Reporter interface to a ProgressUpdate
// callback. Summary events are logged rather than forwarded.
type progressReporter struct {
	callback func(ProgressUpdate)
	logger   *slog.Logger
}

func newProgressReporter(callback func(ProgressUpdate), logger *slog.Logger) *progressReporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &progressReporter{callback: callback, logger: logger}
}

func (r *progressReporter) emit(update ProgressUpdate) {
	if r.callback != nil {
		r.callback(update)
	}
}

func (r *progressReporter) Hardware(s draptolib.HardwareSummary) {
	r.logger.Debug("drapto hardware", logging.Any("hostname", s.Hostname))
}

func (r *progressReporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Info("drapto initialized",
		logging.Any("input", s.InputFile),
		logging.Any("resolution", s.Resolution),
		logging.Any("dynamic_range", s.DynamicRange),
	)
}

func (r *progressReporter) StageProgress(s draptolib.StageProgress) {
	update := ProgressUpdate{
		Percent: float64(s.Percent),
		Stage:   s.Stage,
		Message: s.Message,
	}
	if s.ETA != nil {
		update.ETA = *s.ETA
	}
	r.emit(update)
}

func (r *progressReporter) CropResult(s draptolib.CropSummary) {
	r.logger.Debug("drapto crop", logging.Any("crop", s.Crop), logging.Any("required", s.Required))
}

func (r *progressReporter) EncodingConfig(s draptolib.EncodingConfigSummary) {
	r.logger.Debug("drapto encoding config",
		logging.Any("encoder", s.Encoder),
		logging.Any("preset", s.Preset),
		logging.Any("audio_codec", s.AudioCodec),
	)
}

func (r *progressReporter) EncodingStarted(totalFrames uint64) {
	r.emit(ProgressUpdate{Stage: "encoding", Message: "encoding started"})
}

func (r *progressReporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	r.emit(ProgressUpdate{
		Percent: float64(s.Percent),
		Stage:   "encoding",
		ETA:     s.ETA,
	})
}

func (r *progressReporter) ValidationComplete(s draptolib.ValidationSummary) {
	if !s.Passed {
		r.logger.Warn("drapto validation failed", logging.Int("steps", len(s.Steps)))
	}
}

func (r *progressReporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.emit(ProgressUpdate{Percent: 100, Stage: "complete", Message: s.OutputFile})
}

func (r *progressReporter) Warning(message string) {
	r.logger.Warn("drapto warning", logging.String("message", message))
}

func (r *progressReporter) Error(e draptolib.ReporterError) {
	r.logger.Error("drapto error",
		logging.Any("title", e.Title),
		logging.Any("message", e.Message),
		logging.Any("suggestion", e.Suggestion),
	)
}

func (r *progressReporter) OperationComplete(message string) {
	r.logger.Debug("drapto operation complete", logging.String("message", message))
}

func (r *progressReporter) BatchStarted(draptolib.BatchStartInfo) {}

func (r *progressReporter) FileProgress(draptolib.FileProgressContext) {}

func (r *progressReporter) BatchComplete(draptolib.BatchSummary) {}

var _ draptolib.Reporter = (*progressReporter)(nil)
