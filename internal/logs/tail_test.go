package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"truinconv/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truinconv.log")
	writeLog(t, path, "a\nb\nc\n")

	lines, offset, err := logs.Tail(path, logs.Options{Lines: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "b" || lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestTailFiltersAndSkipsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truinconv.log")
	writeLog(t, path, "batch_id=abc one\nbatch_id=def two\nbatch_id=abc three\nbatch_id=abc partial")

	lines, offset, err := logs.Tail(path, logs.Options{Lines: 10, Match: "abc"})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "batch_id=abc one" || lines[1] != "batch_id=abc three" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if want := int64(len("batch_id=abc one\nbatch_id=def two\nbatch_id=abc three\n")); offset != want {
		t.Fatalf("offset = %d, want %d", offset, want)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "none.log"), logs.Options{Lines: 5})
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truinconv.log")
	writeLog(t, path, "start\n")
	_, offset, err := logs.Tail(path, logs.Options{})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, logs.Options{}, func(line string) {
			mu.Lock()
			got = append(got, line)
			n := len(got)
			mu.Unlock()
			if n == 2 {
				cancel()
			}
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("later\nlast\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	if err := <-done; err != context.Canceled {
		t.Fatalf("Follow returned %v, want context.Canceled", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "later" || got[1] != "last" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
