package testsupport

import (
	"context"
	"testing"

	"truinconv/internal/config"
	"truinconv/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginBatch starts a batch for tests using the provided store.
func BeginBatch(t testing.TB, store *history.Store, uuid string, total int) *history.Batch {
	t.Helper()

	batch, err := store.BeginBatch(context.Background(), history.BatchInfo{
		UUID:         uuid,
		Category:     "Images",
		SourceFormat: "PNG",
		TargetFormat: "JPG",
		OutputDir:    "/tmp/out",
		Total:        total,
	})
	if err != nil {
		t.Fatalf("store.BeginBatch: %v", err)
	}
	return batch
}
