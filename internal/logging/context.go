package logging

import (
	"context"
	"log/slog"

	"truinconv/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID is the standardized structured logging key for batch identifiers.
	FieldBatchID = "batch_id"
	// FieldFile is the standardized structured logging key for the file being converted.
	FieldFile = "file"
	// FieldCategory is the standardized structured logging key for conversion categories.
	FieldCategory = "category"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if category, ok := services.CategoryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCategory, category))
	}
	if file, ok := services.FileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFile, file))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
