package services

import "context"

type contextKey string

const (
	batchIDKey  contextKey = "batch_id"
	fileKey     contextKey = "file"
	categoryKey contextKey = "category"
)

// WithBatchID annotates context with the batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFile annotates context with the file currently being converted.
func WithFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, fileKey, path)
}

// FileFromContext returns the file path if present.
func FileFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(fileKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCategory annotates context with the conversion category name.
func WithCategory(ctx context.Context, category string) context.Context {
	if category == "" {
		return ctx
	}
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext returns the conversion category if present.
func CategoryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(categoryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
