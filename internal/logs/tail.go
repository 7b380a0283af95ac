package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// DefaultPollInterval is how often Follow checks for new lines.
const DefaultPollInterval = 250 * time.Millisecond

// Options controls Tail and Follow.
type Options struct {
	// Lines is the number of trailing lines Tail returns; <= 0 returns none
	// and only reports the end offset.
	Lines int
	// Match keeps only lines containing this substring when non-empty.
	Match string
}

func (o Options) keep(line string) bool {
	return o.Match == "" || strings.Contains(line, o.Match)
}

// Tail returns the last matching lines of path and the offset of the end of
// the file. A missing file yields no lines and offset 0.
func Tail(path string, opts Options) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Lines <= 0 {
		return nil, info.Size(), nil
	}

	ring := make([]string, opts.Lines)
	count, idx := 0, 0
	offset, err := scanLines(file, func(line string) {
		if !opts.keep(line) {
			return
		}
		ring[idx] = line
		idx = (idx + 1) % opts.Lines
		if count < opts.Lines {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, count)
	if count == opts.Lines {
		for i := range count {
			lines[i] = ring[(idx+i)%opts.Lines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// Follow emits matching lines appended after offset until ctx is done. It
// returns ctx.Err() on cancellation.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, opts Options, emit func(string)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, func(line string) {
			if opts.keep(line) {
				emit(line)
			}
		})
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// readFrom reads complete lines after offset. A file shorter than offset was
// truncated, so reading restarts at 0.
func readFrom(path string, offset int64, fn func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	end, err := scanLines(file, fn)
	if err != nil {
		return offset, err
	}
	return offset + end, nil
}

// scanLines calls fn for every newline-terminated line in r and returns the
// number of bytes consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			if len(line) <= maxLineBytes {
				fn(strings.TrimRight(line, "\r\n"))
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}
