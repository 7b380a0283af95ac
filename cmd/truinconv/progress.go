package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"truinconv/internal/batch"
)

// progressReporter renders batch events. It is only called from the batch
// worker goroutine.
type progressReporter interface {
	handle(batch.Event)
	finish()
}

func newProgressReporter(out io.Writer, total int) progressReporter {
	if isTerminal(out) {
		return newBarReporter(out, total)
	}
	return &textReporter{out: out, last: make(map[int]int)}
}

// barReporter drives a single bar across the whole batch; every file owns
// 100 steps of it.
type barReporter struct {
	out   io.Writer
	total int
	bar   *progressbar.ProgressBar
}

func newBarReporter(out io.Writer, total int) *barReporter {
	steps := total * 100
	if steps <= 0 {
		steps = 100
	}
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(true),
	)
	return &barReporter{out: out, total: total, bar: bar}
}

func (r *barReporter) handle(ev batch.Event) {
	if ev.Message != "" {
		_ = r.bar.Clear()
		fmt.Fprintln(r.out, ev.Message)
		r.bar.Describe(fmt.Sprintf("[%d/%d] %s", ev.Index, ev.Total, filepath.Base(ev.File)))
	}
	_ = r.bar.Set(overallSteps(ev))
}

func (r *barReporter) finish() {
	_ = r.bar.Finish()
}

// textReporter prints messages plus a line per 25% of per-file progress.
type textReporter struct {
	out  io.Writer
	last map[int]int
}

func (r *textReporter) handle(ev batch.Event) {
	if ev.Message != "" {
		fmt.Fprintln(r.out, ev.Message)
		return
	}
	step := int(math.Floor(ev.Percent/25)) * 25
	if step <= 0 || step >= 100 || step <= r.last[ev.Index] {
		return
	}
	r.last[ev.Index] = step
	fmt.Fprintf(r.out, "  %s: %d%%\n", filepath.Base(ev.File), step)
}

func (r *textReporter) finish() {}

func overallSteps(ev batch.Event) int {
	percent := math.Max(0, math.Min(100, ev.Percent))
	done := ev.Index - 1
	if done < 0 {
		done = 0
	}
	return done*100 + int(percent)
}
