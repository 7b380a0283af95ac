package history

import (
	"strings"
	"time"
)

// Status is the recorded outcome of a single file conversion.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
	StatusCanceled  Status = "canceled"
	StatusSkipped   Status = "skipped"
)

var statusSet = map[Status]struct{}{
	StatusSucceeded: {},
	StatusFailed:    {},
	StatusRejected:  {},
	StatusCanceled:  {},
	StatusSkipped:   {},
}

// ParseStatus converts a string into a Status, reporting whether it is known.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// Succeeded reports whether the status counts toward the succeeded total.
func (s Status) Succeeded() bool {
	return s == StatusSucceeded
}

// Batch is one run of the converter over a set of files.
type Batch struct {
	ID           int64
	UUID         string
	Category     string
	SourceFormat string
	TargetFormat string
	OutputDir    string
	StartedAt    time.Time
	FinishedAt   time.Time
	Total        int
	Succeeded    int
	Failed       int
}

// Finished reports whether FinishBatch has been recorded.
func (b Batch) Finished() bool {
	return !b.FinishedAt.IsZero()
}

// Elapsed returns the wall time of a finished batch, or 0.
func (b Batch) Elapsed() time.Duration {
	if !b.Finished() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// BatchInfo describes a batch about to start.
type BatchInfo struct {
	UUID         string
	Category     string
	SourceFormat string
	TargetFormat string
	OutputDir    string
	Total        int
}

// Conversion is the persisted result of one file within a batch.
type Conversion struct {
	ID           int64
	BatchID      int64
	InputPath    string
	OutputPath   string
	Status       Status
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// timeLayout is fixed-width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
