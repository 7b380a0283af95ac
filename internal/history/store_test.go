package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"truinconv/internal/history"
	"truinconv/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	if store.Path() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected db path %q", store.Path())
	}
	batches, err := store.ListBatches(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected empty history, got %d batches", len(batches))
	}
}

func TestOpenReopensExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.BeginBatch(t, first, "aaaa-1111", 1)
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenHistory(t, cfg)
	batches, err := second.ListBatches(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected persisted batch, got %d", len(batches))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestBatchLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	batch := testsupport.BeginBatch(t, store, "3f1c2d9e-0000-4000-8000-000000000001", 4)
	if batch.ID == 0 || batch.Finished() {
		t.Fatalf("unexpected new batch %+v", batch)
	}
	if batch.Total != 4 || batch.SourceFormat != "PNG" || batch.TargetFormat != "JPG" {
		t.Fatalf("unexpected batch fields %+v", batch)
	}

	results := []history.Conversion{
		{InputPath: "/in/a.png", OutputPath: "/out/a.jpg", Status: history.StatusSucceeded, Duration: 1500 * time.Millisecond},
		{InputPath: "/in/b.png", Status: history.StatusFailed, ErrorMessage: "cannot read image file: b.png"},
		{InputPath: "/in/c.png", Status: history.StatusCanceled, ErrorMessage: "context canceled"},
		{InputPath: "/in/d.gif", Status: history.StatusSkipped, ErrorMessage: "does not match PNG"},
	}
	for _, conv := range results {
		if _, err := store.RecordResult(ctx, batch.ID, conv); err != nil {
			t.Fatalf("RecordResult(%s): %v", conv.InputPath, err)
		}
	}

	finished, err := store.FinishBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("FinishBatch: %v", err)
	}
	if !finished.Finished() {
		t.Fatal("expected finished timestamp")
	}
	if finished.Succeeded != 1 || finished.Failed != 2 {
		t.Fatalf("unexpected totals: succeeded=%d failed=%d", finished.Succeeded, finished.Failed)
	}
	if finished.Elapsed() < 0 {
		t.Fatalf("negative elapsed %v", finished.Elapsed())
	}

	convs, err := store.Conversions(ctx, batch.ID)
	if err != nil {
		t.Fatalf("Conversions: %v", err)
	}
	if len(convs) != len(results) {
		t.Fatalf("expected %d conversions, got %d", len(results), len(convs))
	}
	if convs[0].OutputPath != "/out/a.jpg" || convs[0].Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected first conversion %+v", convs[0])
	}
	if convs[1].OutputPath != "" || convs[1].ErrorMessage == "" {
		t.Fatalf("unexpected failed conversion %+v", convs[1])
	}
	if convs[3].Status != history.StatusSkipped {
		t.Fatalf("expected skipped status, got %q", convs[3].Status)
	}
}

func TestRecordResultRejectsUnknownStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	batch := testsupport.BeginBatch(t, store, "bad-status", 1)

	_, err := store.RecordResult(context.Background(), batch.ID, history.Conversion{InputPath: "x", Status: "exploded"})
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestBeginBatchRequiresUUID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if _, err := store.BeginBatch(context.Background(), history.BatchInfo{}); err == nil {
		t.Fatal("expected error when uuid missing")
	}
}

func TestFindBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	first := testsupport.BeginBatch(t, store, "abcd1234-0000-4000-8000-000000000001", 1)
	testsupport.BeginBatch(t, store, "abcd9999-0000-4000-8000-000000000002", 1)

	cases := []struct {
		name    string
		ref     string
		wantID  int64
		wantErr bool
	}{
		{name: "numeric id", ref: "1", wantID: first.ID},
		{name: "full uuid", ref: first.UUID, wantID: first.ID},
		{name: "unique prefix", ref: "ABCD1", wantID: first.ID},
		{name: "ambiguous prefix", ref: "abcd", wantErr: true},
		{name: "missing", ref: "ffff", wantErr: true},
		{name: "empty", ref: " ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := store.FindBatch(ctx, tc.ref)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindBatch(%q): %v", tc.ref, err)
			}
			if batch.ID != tc.wantID {
				t.Fatalf("FindBatch(%q) = %d, want %d", tc.ref, batch.ID, tc.wantID)
			}
		})
	}

	if _, err := store.FindBatch(ctx, "ffff"); !errors.Is(err, history.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestListBatchesNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	for _, id := range []string{"one", "two", "three"} {
		testsupport.BeginBatch(t, store, id, 1)
	}
	batches, err := store.ListBatches(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].UUID != "three" || batches[1].UUID != "two" {
		t.Fatalf("unexpected order: %s, %s", batches[0].UUID, batches[1].UUID)
	}
}

func TestPruneAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	batch := testsupport.BeginBatch(t, store, "old", 1)
	if _, err := store.RecordResult(ctx, batch.ID, history.Conversion{InputPath: "/in/a.png", Status: history.StatusSucceeded}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	removed, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected recent batch to survive, removed %d", removed)
	}
	if removed, _ := store.Prune(ctx, 0); removed != 0 {
		t.Fatalf("expected zero age to prune nothing, removed %d", removed)
	}

	time.Sleep(5 * time.Millisecond)
	removed, err = store.Prune(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned batch, got %d", removed)
	}
	convs, err := store.Conversions(ctx, batch.ID)
	if err != nil {
		t.Fatalf("Conversions: %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("expected cascade delete, got %d conversions", len(convs))
	}

	testsupport.BeginBatch(t, store, "a", 1)
	testsupport.BeginBatch(t, store, "b", 1)
	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared batches, got %d", cleared)
	}
}

func TestSummarize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	batch := testsupport.BeginBatch(t, store, "sum", 3)
	for _, status := range []history.Status{history.StatusSucceeded, history.StatusSucceeded, history.StatusRejected} {
		if _, err := store.RecordResult(ctx, batch.ID, history.Conversion{InputPath: "f", Status: status}); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}
	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Batches != 1 || summary.Conversions != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.ByStatus[history.StatusSucceeded] != 2 || summary.ByStatus[history.StatusRejected] != 1 {
		t.Fatalf("unexpected status counts %+v", summary.ByStatus)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := history.ParseStatus(" Succeeded "); !ok || status != history.StatusSucceeded {
		t.Fatalf("unexpected parse result %q %v", status, ok)
	}
	if _, ok := history.ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status to fail")
	}
}
